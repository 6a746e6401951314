package scraper

import (
	"context"
	"fmt"
	"time"

	"igcounts/pkg/block"
	"igcounts/pkg/checkpoint"
	"igcounts/pkg/config"
	"igcounts/pkg/extract"
	"igcounts/pkg/instagram"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/ratelimit"
	"igcounts/pkg/search"
	"igcounts/pkg/ui"
)

// Scraper drives the sequential harvest: one subject at a time through
// search, block inspection, count extraction, and checkpointing.
type Scraper struct {
	provider  search.Provider
	guard     *block.Guard
	extractor *extract.Extractor
	pacer     ratelimit.Pacer
	notifier  *ui.Notifier
	config    *config.Config
	logger    logger.Logger
}

// New creates a Scraper around an assembled search provider. The pacer,
// block guard, and extractor are built from configuration.
func New(cfg *config.Config, provider search.Provider) *Scraper {
	log := logger.GetLogger()

	pacer := ratelimit.New(ratelimit.Delays{
		MinDelay:    cfg.Pacing.MinDelay(),
		MaxDelay:    cfg.Pacing.MaxDelay(),
		CooldownMin: cfg.Pacing.CooldownMin(),
		CooldownMax: cfg.Pacing.CooldownMax(),
		Settle:      cfg.Pacing.Settle(),
	})

	notifier := ui.NewNotifier(cfg.Notifications.NotificationType, cfg.Notifications.Enabled)
	notify := func(title, message string) {}
	if cfg.Notifications.OnBlock {
		notify = notifier.SendNotification
	}
	guard := block.NewGuard(pacer, notify, ui.PromptEnter, log)

	meta := instagram.NewMetadataClient(cfg.Search.UserAgent, cfg.Metadata.Timeout())
	extractor := extract.NewExtractor(meta, cfg.Metadata.RetryDelay(), cfg.Metadata.MaxAttempts, log)

	return &Scraper{
		provider:  provider,
		guard:     guard,
		extractor: extractor,
		pacer:     pacer,
		notifier:  notifier,
		config:    cfg,
		logger:    log,
	}
}

// Run executes one harvest pass over subjects, visiting the checkpoint rows
// the selector picks and saving the checkpoint after every one. The pass
// can be interrupted at any point; everything processed so far is on disk.
func (s *Scraper) Run(ctx context.Context, subjects []models.Subject, checkpointPath string, selector Selector) error {
	mgr := checkpoint.NewManager(checkpointPath)
	rows, err := mgr.Load(subjects)
	if err != nil {
		return err
	}

	indices := selector.Pick(rows)
	if len(indices) == 0 {
		s.logger.InfoWithFields("Checkpoint already complete", map[string]interface{}{
			"checkpoint": mgr.Path(),
			"selector":   selector.Name(),
		})
		ui.PrintSuccess("Checkpoint already complete, nothing to do")
		return nil
	}

	s.logger.InfoWithFields("Starting harvest pass", map[string]interface{}{
		"subjects":   len(subjects),
		"to_process": len(indices),
		"selector":   selector.Name(),
		"provider":   s.provider.Name(),
		"checkpoint": mgr.Path(),
	})

	tracker := ui.NewTracker(len(indices))
	for n, i := range indices {
		if err := ctx.Err(); err != nil {
			return err
		}

		subject := subjects[i]
		tracker.PrintSubject(n, subject.Name)

		extraction, err := s.harvestSubject(ctx, subject)
		if err != nil {
			return err
		}

		checkpoint.Apply(&rows[i], extraction)
		if err := mgr.Save(rows); err != nil {
			return err
		}

		logger.LogSubject(subject.Name, extraction.Tier.String(), extraction.Following, extraction.Followers)
		if extraction.Empty() {
			tracker.PrintMiss()
		} else {
			tracker.PrintOutcome(rows[i].Following, rows[i].Followers)
		}
		tracker.Record(rows[i].Filled())

		if n < len(indices)-1 {
			if err := s.pacer.Pause(ctx); err != nil {
				return err
			}
		}
	}

	tracker.PrintSummary()
	s.logger.InfoWithFields("Harvest pass finished", map[string]interface{}{
		"processed": tracker.Processed,
		"filled":    tracker.Filled,
		"empty":     tracker.Empty,
	})
	if s.config.Notifications.OnComplete {
		s.notifier.SendSuccess("Harvest complete",
			fmt.Sprintf("%d subjects processed, %d filled", tracker.Processed, tracker.Filled))
	}
	return nil
}

// harvestSubject runs search and extraction for one subject. A detected
// block runs the recovery flow and the same subject is searched again; a
// search failure records an empty row rather than aborting the pass.
func (s *Scraper) harvestSubject(ctx context.Context, subject models.Subject) (models.Extraction, error) {
	query := search.BuildQuery(s.config.Search.QueryTemplate, subject.Name)

	for {
		if err := ctx.Err(); err != nil {
			return models.Extraction{}, err
		}

		start := time.Now()
		page, err := s.provider.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return models.Extraction{}, ctx.Err()
			}
			s.logger.WithError(err).WithField("subject", subject.Name).Warn("Search failed, recording empty row")
			return models.Extraction{}, nil
		}
		logger.LogSearch(s.provider.Name(), query, len(page.Results), time.Since(start))

		if s.guard.Inspect(page.URL, page.Text) == block.StateBlocked {
			logger.LogBlocked(s.provider.Name(), page.URL)
			if err := s.guard.Recover(ctx, s.provider); err != nil {
				return models.Extraction{}, err
			}
			continue
		}

		return s.extractFromPage(ctx, subject, page), nil
	}
}

// extractFromPage picks the first profile result and runs the extraction
// tiers on it. With no profile among the results, a handle already known
// for the subject still allows the metadata tier to run directly.
func (s *Scraper) extractFromPage(ctx context.Context, subject models.Subject, page *search.Page) models.Extraction {
	for _, r := range page.Results {
		profileURL, ok := instagram.CleanProfileURL(r.URL)
		if !ok {
			continue
		}
		return s.extractor.Extract(ctx, r.Snippet, profileURL)
	}

	if subject.Handle != "" {
		s.logger.DebugWithFields("No profile result, using known handle", map[string]interface{}{
			"subject": subject.Name,
			"handle":  subject.Handle,
		})
		return s.extractor.Extract(ctx, "", instagram.ProfileURL(subject.Handle))
	}

	s.logger.DebugWithFields("No profile result for subject", map[string]interface{}{
		"subject": subject.Name,
	})
	return models.Extraction{}
}
