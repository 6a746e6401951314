// Package browser owns the Chrome session the interactive search providers
// drive. One stealth tab lives for the whole run; challenges are solved by
// a human in that same window, so headless stays off by default.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

// Options configures the Chrome instance.
type Options struct {
	// Headless runs Chrome without a visible window. Leave false when an
	// operator needs to solve challenges in the session.
	Headless bool

	// RemoteURL is the WebSocket URL of an already running Chrome.
	// Empty means launch a local one.
	RemoteURL string

	// NavigateTimeout bounds one navigation including the load wait.
	NavigateTimeout time.Duration

	Logger logger.Logger
}

// Session is one stealth Chrome tab.
type Session struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	timeout time.Duration
	log     logger.Logger
}

// NewSession launches Chrome (or connects to a remote one) and opens a
// stealth page. Close must be called when the run ends.
func NewSession(opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	timeout := opts.NavigateTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var (
		wsURL string
		lnch  *launcher.Launcher
	)
	if opts.RemoteURL != "" {
		wsURL = opts.RemoteURL
		log.WithField("url", wsURL).Info("Connecting to remote Chrome")
	} else {
		l := launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeNetwork, "failed to launch Chrome", err)
		}
		wsURL = u
		lnch = l
		log.WithField("headless", opts.Headless).Info("Launched Chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "failed to connect to Chrome", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		b.Close()
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "failed to open stealth page", err)
	}

	return &Session{
		browser: b,
		lnch:    lnch,
		page:    page,
		timeout: timeout,
		log:     log,
	}, nil
}

// Navigate loads the URL and waits for the load event. A load wait that
// times out is logged but not fatal; the page usually has enough content.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.page.Context(navCtx).Navigate(url); err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, fmt.Sprintf("failed to navigate to %s", url), err)
	}
	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		s.log.WithError(err).WithField("url", url).Warn("Page load wait timed out")
	}
	return nil
}

// URL returns the current page address
func (s *Session) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to read page info", err)
	}
	return info.URL, nil
}

// Text returns the visible text of the page
func (s *Session) Text(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to read page text", err)
	}
	return res.Value.Str(), nil
}

// HTML serializes the current DOM. Providers parse this instead of walking
// elements over the wire, which keeps their parsers testable offline.
func (s *Session) HTML(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to serialize page", err)
	}
	return res.Value.Str(), nil
}

// Close shuts down the tab, the browser, and the launched process
func (s *Session) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return nil
}
