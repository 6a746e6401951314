package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer spaces the requests the pipeline makes so the search session keeps
// looking like a person browsing.
type Pacer interface {
	// Pause blocks for the jittered delay between subjects.
	Pause(ctx context.Context) error
	// Cooldown blocks for the randomized post-block pause and returns the
	// duration that was chosen.
	Cooldown(ctx context.Context) (time.Duration, error)
	// Settle blocks briefly after the operator clears a block.
	Settle(ctx context.Context) error
}

// Delays holds the pacing bounds. Min/Max pairs are inclusive ranges the
// pacer draws from uniformly.
type Delays struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	CooldownMin time.Duration
	CooldownMax time.Duration
	Settle      time.Duration
}

// RandomPacer implements Pacer with uniform random draws
type RandomPacer struct {
	delays Delays

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a pacer seeded from the current time
func New(delays Delays) *RandomPacer {
	return NewWithSource(delays, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a pacer with a caller supplied random source,
// which makes the chosen delays reproducible in tests
func NewWithSource(delays Delays, src rand.Source) *RandomPacer {
	return &RandomPacer{
		delays: delays,
		rng:    rand.New(src),
	}
}

// Pause blocks for a uniform random duration between MinDelay and MaxDelay
func (p *RandomPacer) Pause(ctx context.Context) error {
	return sleep(ctx, p.uniform(p.delays.MinDelay, p.delays.MaxDelay))
}

// Cooldown blocks for a uniform random duration between CooldownMin and
// CooldownMax
func (p *RandomPacer) Cooldown(ctx context.Context) (time.Duration, error) {
	d := p.uniform(p.delays.CooldownMin, p.delays.CooldownMax)
	return d, sleep(ctx, d)
}

// Settle blocks for the fixed settle duration
func (p *RandomPacer) Settle(ctx context.Context) error {
	return sleep(ctx, p.delays.Settle)
}

// uniform draws from [lo, hi]; a degenerate range collapses to lo
func (p *RandomPacer) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo + time.Duration(p.rng.Float64()*float64(hi-lo))
}

// sleep waits for the duration or until the context is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop is a Pacer that never waits. Tests use it to run pipelines at full
// speed.
type Nop struct{}

func (Nop) Pause(ctx context.Context) error { return nil }

func (Nop) Cooldown(ctx context.Context) (time.Duration, error) { return 0, nil }

func (Nop) Settle(ctx context.Context) error { return nil }
