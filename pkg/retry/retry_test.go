package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "transient")
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	blocked := errs.New(errs.ErrorTypeBlocked, "captcha interstitial")
	err := Do(func() error {
		calls++
		return blocked
	}, testConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls, "blocked errors must not be retried")
	assert.Equal(t, errs.ErrorTypeBlocked, errs.TypeOf(err))
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNetwork, "still down")
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts")
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig(0)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Minute}

	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			return errs.New(errs.ErrorTypeNetwork, "down")
		}, cfg)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry cancelled")
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "transient")
		}
		return "714 Followers, 320 Following", nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "714 Followers, 320 Following", result)
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := testConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	calls := 0
	_ = Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNetwork, "down")
	}, cfg)

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, "down")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeStorage, "tx aborted")))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeBlocked, "captcha")))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeParsing, "no token")))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(context.DeadlineExceeded))
}

func TestRetrierBuilders(t *testing.T) {
	base := NewRetrier(testConfig(1))
	bumped := base.WithMaxAttempts(4).WithBackoff(&ConstantBackoff{Delay: time.Millisecond})

	calls := 0
	err := bumped.Do(func() error {
		calls++
		if calls < 4 {
			return errs.New(errs.ErrorTypeNetwork, "transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)

	// The base retrier keeps its original single attempt
	calls = 0
	err = base.Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNetwork, "transient")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponentialBackoffDelays(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, eb.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, eb.NextDelay(3))
	// Capped at MaxDelay
	assert.Equal(t, time.Second, eb.NextDelay(10))
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 50; i++ {
		d := eb.NextDelay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 2 * time.Second}
	assert.Equal(t, time.Duration(0), cb.NextDelay(0))
	assert.Equal(t, 2*time.Second, cb.NextDelay(1))
	assert.Equal(t, 2*time.Second, cb.NextDelay(7))
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Minute), context.Canceled)
}
