// Package retry provides configurable retry logic with pluggable backoff
// strategies.
//
// The harvester uses it in two places: the profile metadata fallback retries
// its page fetch once after a fixed pause, and the sync path retries the
// database connection with exponential backoff. Both go through the same
// Do/DoWithResult entry points.
//
// Basic usage:
//
//	err := retry.Do(func() error {
//	    return store.Connect(ctx)
//	}, retry.DefaultConfig())
//
// Fixed-pause retry with a bounded number of attempts:
//
//	cfg := &retry.Config{
//	    MaxAttempts: 2,
//	    Backoff:     &retry.ConstantBackoff{Delay: 2 * time.Second},
//	    RetryIf:     retry.DefaultRetryIf,
//	    Context:     ctx,
//	}
//	html, err := retry.DoWithResult(func() (string, error) {
//	    return client.FetchProfileHTML(ctx, profileURL)
//	}, cfg)
//
// Errors classified as blocked are never retried here; the block flow hands
// control to the operator instead.
package retry
