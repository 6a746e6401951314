package search

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

const ddgHTMLEndpoint = "https://html.duckduckgo.com/html/"

// DDGHTML queries the JavaScript-free DuckDuckGo endpoint over plain HTTP.
// No browser needed, which makes it the right provider for headless boxes,
// at the price of a session no operator can click a challenge away in.
type DDGHTML struct {
	http     *resty.Client
	endpoint string
	log      logger.Logger

	// last page fetched, kept so block re-detection can reuse one refresh
	lastQuery string
	lastPage  *Page
}

// NewDDGHTML creates the static provider
func NewDDGHTML(userAgent string, timeout time.Duration, log logger.Logger) *DDGHTML {
	if log == nil {
		log = logger.GetLogger()
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(timeout)

	return &DDGHTML{
		http:     client,
		endpoint: ddgHTMLEndpoint,
		log:      log,
	}
}

func (p *DDGHTML) Name() string { return "ddg-html" }

// Search submits the query and parses the returned page
func (p *DDGHTML) Search(ctx context.Context, query string) (*Page, error) {
	page, err := p.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	p.lastQuery = query
	p.lastPage = page
	p.log.DebugWithFields("Results page parsed", map[string]interface{}{
		"provider": p.Name(),
		"results":  len(page.Results),
	})
	return page, nil
}

// URL re-runs the last query and reports the final address. The refreshed
// page is cached so the Text call that follows does not fetch again.
func (p *DDGHTML) URL(ctx context.Context) (string, error) {
	if p.lastQuery == "" {
		return "", nil
	}
	page, err := p.fetch(ctx, p.lastQuery)
	if err != nil {
		return "", err
	}
	p.lastPage = page
	return page.URL, nil
}

// Text reports the page text captured by the preceding URL call
func (p *DDGHTML) Text(ctx context.Context) (string, error) {
	if p.lastPage == nil {
		if _, err := p.URL(ctx); err != nil {
			return "", err
		}
		if p.lastPage == nil {
			return "", nil
		}
	}
	return p.lastPage.Text, nil
}

func (p *DDGHTML) fetch(ctx context.Context, query string) (*Page, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get(p.endpoint)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "search request failed", err)
	}

	finalURL := p.endpoint
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	body := resp.String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, "parse results page", err)
	}

	return &Page{
		Results: legacyDDGResults(doc),
		URL:     finalURL,
		Text:    doc.Find("body").Text(),
	}, nil
}

// legacyDDGResults parses the div.result layout served by the static
// endpoint and by older interactive renders
func legacyDDGResults(doc *goquery.Document) []Result {
	var results []Result
	seen := make(map[string]bool)

	doc.Find("div.result, div.web-result").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := resolveRedirect(href)
		if seen[target] {
			return
		}
		seen[target] = true

		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
	})
	return results
}

// resolveRedirect unwraps the engine's /l/?uddg=<target> redirect links
func resolveRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
