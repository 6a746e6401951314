// Package search runs one query per subject against a pluggable engine
// provider and hands back the result list plus the page state the block
// detector inspects.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"igcounts/pkg/block"
	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

// DefaultQueryTemplate targets profile pages on the network's own domain
const DefaultQueryTemplate = "%s instagram site:instagram.com"

// BuildQuery renders the search query for one subject name
func BuildQuery(template, name string) string {
	if template == "" {
		template = DefaultQueryTemplate
	}
	if !strings.Contains(template, "%s") {
		return template + " " + name
	}
	return fmt.Sprintf(template, name)
}

// Result is one parsed search hit
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Page is one search round trip: the parsed results plus the address and
// visible text the block detector inspects
type Page struct {
	Results []Result
	URL     string
	Text    string
}

// Provider submits queries to one engine. It also serves as the live page
// for operator-assisted block recovery.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Page, error)
	block.Page
}

// Session is the part of the browser session the interactive providers
// drive. *browser.Session satisfies it.
type Session interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
}

// NewProvider builds the provider named in the configuration. The browser
// backed providers need a session; the static one needs only the HTTP
// settings.
func NewProvider(name string, session Session, userAgent string, timeout time.Duration, log logger.Logger) (Provider, error) {
	switch strings.ToLower(name) {
	case "duckduckgo":
		if session == nil {
			return nil, errs.New(errs.ErrorTypeConfig, "duckduckgo provider requires a browser session")
		}
		return NewDuckDuckGo(session, log), nil
	case "google":
		if session == nil {
			return nil, errs.New(errs.ErrorTypeConfig, "google provider requires a browser session")
		}
		return NewGoogle(session, log), nil
	case "ddg-html":
		return NewDDGHTML(userAgent, timeout, log), nil
	default:
		return nil, errs.New(errs.ErrorTypeConfig, fmt.Sprintf("unknown search provider %q", name))
	}
}
