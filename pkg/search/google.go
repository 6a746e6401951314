package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"igcounts/pkg/logger"
)

// Google drives the interactive google.com results page through the browser
// session. Google blocks faster than DuckDuckGo; keep it for the cases
// where DuckDuckGo cannot find a profile.
type Google struct {
	session Session
	log     logger.Logger
}

// NewGoogle creates the interactive Google provider
func NewGoogle(session Session, log logger.Logger) *Google {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Google{session: session, log: log}
}

func (p *Google) Name() string { return "google" }

// Search navigates to the results page for the query and parses it. hl=en
// pins the interface language so the block detector's phrases match.
func (p *Google) Search(ctx context.Context, query string) (*Page, error) {
	searchURL := "https://www.google.com/search?hl=en&q=" + url.QueryEscape(query)
	if err := p.session.Navigate(ctx, searchURL); err != nil {
		return nil, err
	}

	html, err := p.session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	pageURL, err := p.session.URL(ctx)
	if err != nil {
		return nil, err
	}
	text, err := p.session.Text(ctx)
	if err != nil {
		return nil, err
	}

	results := parseGoogle(html)
	p.log.DebugWithFields("Results page parsed", map[string]interface{}{
		"provider": p.Name(),
		"results":  len(results),
	})

	return &Page{
		Results: results,
		URL:     pageURL,
		Text:    text,
	}, nil
}

// URL reports the live session address for block re-detection
func (p *Google) URL(ctx context.Context) (string, error) {
	return p.session.URL(ctx)
}

// Text reports the live session page text for block re-detection
func (p *Google) Text(ctx context.Context) (string, error) {
	return p.session.Text(ctx)
}

// parseGoogle extracts results from the interactive results page. Result
// blocks still carry the g class; when they stop doing so, fall back to
// scanning outbound anchors under the results container.
func parseGoogle(html string) []Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var results []Result
	seen := make(map[string]bool)

	doc.Find("div.g").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") || seen[href] {
			return
		}
		seen[href] = true

		results = append(results, Result{
			Title:   strings.TrimSpace(sel.Find("h3").First().Text()),
			URL:     href,
			Snippet: strings.TrimSpace(sel.Text()),
		})
	})

	if len(results) > 0 {
		return results
	}

	doc.Find("#search a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") || seen[href] {
			return
		}
		if strings.Contains(href, "google.") || strings.Contains(href, "webcache") {
			return
		}
		seen[href] = true

		snippet := strings.TrimSpace(sel.Text())
		if parent := sel.Closest("div"); parent.Length() > 0 {
			snippet = strings.TrimSpace(parent.Text())
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(sel.Find("h3").First().Text()),
			URL:     href,
			Snippet: snippet,
		})
	})
	return results
}
