// Package scraper drives the follow-count harvest over a roster of names.
//
// The scraper package owns the per-subject pipeline, coordinating the
// search provider, the block guard, the two-tier count extraction, and the
// checkpoint file.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Builds the search query for each roster name
//   - Submits it through a pluggable search Provider
//   - Inspects every result page for CAPTCHA and block interstitials
//   - Runs operator-assisted recovery when the engine blocks the session
//   - Extracts following/followers from the snippet or profile metadata
//   - Rewrites the checkpoint CSV atomically after every subject
//
// The pipeline is strictly sequential. Nothing here spawns workers: the
// jittered pause between subjects is what keeps the search session alive,
// and a pool would defeat it.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := browser.NewSession(browser.Options{Headless: cfg.Search.Headless})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	provider, err := search.NewProvider(cfg.Search.Provider, session,
//	    cfg.Search.UserAgent, cfg.Search.NavigateTimeout(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s := scraper.New(cfg, provider)
//	err = s.Run(ctx, subjects, "instagram_counts.csv", scraper.Resume{})
//
// Selectors:
//
// A pass visits the rows its Selector picks. Resume continues after the
// last fully filled checkpoint row; Gaps revisits only rows with a missing
// field. Both preserve filled cells, so an interrupted or partially failed
// run never loses values it already found.
package scraper
