// Package extract pulls follow counts out of the two places they surface:
// search result snippets and profile og:description lines.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"igcounts/pkg/counts"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/retry"
)

// The count token sits immediately before its keyword:
// "1.2K Following · 500 Followers".
var (
	followingPattern = regexp.MustCompile(`(?i)(\S+)\s+following\b`)
	followersPattern = regexp.MustCompile(`(?i)(\S+)\s+followers\b`)
)

// Collapse normalizes all whitespace runs to single spaces
func Collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// tokenBefore finds the token preceding the keyword and parses it
func tokenBefore(pattern *regexp.Regexp, collapsed string) *int64 {
	m := pattern.FindStringSubmatch(collapsed)
	if m == nil {
		return nil
	}
	n, ok := counts.Parse(counts.CleanToken(m[1]))
	if !ok {
		return nil
	}
	return &n
}

// fromText runs both keyword scans over one piece of text
func fromText(text string, tier models.Tier) models.Extraction {
	collapsed := Collapse(text)
	e := models.Extraction{
		Following: tokenBefore(followingPattern, collapsed),
		Followers: tokenBefore(followersPattern, collapsed),
		Snippet:   collapsed,
	}
	if !e.Empty() {
		e.Tier = tier
	}
	return e
}

// FromSnippet extracts counts from a search result snippet
func FromSnippet(snippet string) models.Extraction {
	return fromText(snippet, models.TierSnippet)
}

// FromProfileLine extracts counts from an og:description line such as
// "714 Followers, 320 Following, 42 Posts - See Instagram photos ..."
func FromProfileLine(line string) models.Extraction {
	return fromText(line, models.TierProfileMeta)
}

// MetadataFetcher supplies the og:description line for a profile URL
type MetadataFetcher interface {
	FetchDescription(ctx context.Context, profileURL string) (string, error)
}

// Extractor combines the snippet pass with the profile metadata fallback
type Extractor struct {
	meta        MetadataFetcher
	retryDelay  time.Duration
	maxAttempts int
	log         logger.Logger
}

// NewExtractor creates an extractor. retryDelay and maxAttempts govern the
// metadata fetch; the snippet pass needs neither.
func NewExtractor(meta MetadataFetcher, retryDelay time.Duration, maxAttempts int, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &Extractor{
		meta:        meta,
		retryDelay:  retryDelay,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Extract runs the snippet pass and, when it leaves a side missing and a
// profile URL is known, the metadata fallback. A metadata read that yields
// any count replaces the snippet result entirely; the profile page is the
// authority once we have it. When the fallback fails, snippet partials
// stand.
func (e *Extractor) Extract(ctx context.Context, snippet, profileURL string) models.Extraction {
	result := FromSnippet(snippet)
	if result.Complete() || profileURL == "" || e.meta == nil {
		return result
	}

	desc, err := e.fetchDescription(ctx, profileURL)
	if err != nil {
		e.log.DebugWithFields("Profile metadata unavailable, keeping snippet result", map[string]interface{}{
			"url":   profileURL,
			"error": err.Error(),
		})
		return result
	}

	meta := FromProfileLine(desc)
	if meta.Empty() {
		return result
	}
	return meta
}

// fetchDescription wraps the metadata fetch in the fixed-pause retry the
// fallback is allowed
func (e *Extractor) fetchDescription(ctx context.Context, profileURL string) (string, error) {
	cfg := &retry.Config{
		MaxAttempts: e.maxAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: e.retryDelay},
		// The fallback retries any failure once; only cancellation stops it
		RetryIf: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
		Context: ctx,
		Logger:  e.log,
	}
	return retry.DoWithResult(func() (string, error) {
		return e.meta.FetchDescription(ctx, profileURL)
	}, cfg)
}
