package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"igcounts/pkg/logger"
)

// DuckDuckGo drives the interactive duckduckgo.com results page through the
// browser session.
type DuckDuckGo struct {
	session Session
	log     logger.Logger
}

// NewDuckDuckGo creates the interactive DuckDuckGo provider
func NewDuckDuckGo(session Session, log logger.Logger) *DuckDuckGo {
	if log == nil {
		log = logger.GetLogger()
	}
	return &DuckDuckGo{session: session, log: log}
}

func (p *DuckDuckGo) Name() string { return "duckduckgo" }

// Search navigates to the results page for the query and parses it
func (p *DuckDuckGo) Search(ctx context.Context, query string) (*Page, error) {
	searchURL := "https://duckduckgo.com/?q=" + url.QueryEscape(query)
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

	results := parseDuckDuckGo(html)
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
func (p *DuckDuckGo) URL(ctx context.Context) (string, error) {
	return p.session.URL(ctx)
}

// Text reports the live session page text for block re-detection
func (p *DuckDuckGo) Text(ctx context.Context) (string, error) {
	return p.session.Text(ctx)
}

// parseDuckDuckGo extracts results from the interactive results page.
// The current markup wraps each hit in article[data-testid="result"]; older
// renders use the div.result layout the static endpoint still serves.
func parseDuckDuckGo(html string) []Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var results []Result
	seen := make(map[string]bool)

	doc.Find(`article[data-testid="result"]`).Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(`a[data-testid="result-title-a"]`).First()
		href, ok := link.Attr("href")
		if !ok || seen[href] {
			return
		}
		seen[href] = true

		snippet := strings.TrimSpace(sel.Find(`[data-result="snippet"]`).Text())
		if snippet == "" {
			snippet = strings.TrimSpace(sel.Text())
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     href,
			Snippet: snippet,
		})
	})

	if len(results) == 0 {
		results = legacyDDGResults(doc)
	}
	return results
}
