package ratelimit

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseStaysWithinBounds(t *testing.T) {
	delays := Delays{
		MinDelay: time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
	}
	p := NewWithSource(delays, rand.NewSource(42))

	for i := 0; i < 20; i++ {
		start := time.Now()
		require.NoError(t, p.Pause(context.Background()))
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, delays.MinDelay)
		// Generous upper bound for scheduler slack
		assert.Less(t, elapsed, 100*time.Millisecond)
	}
}

func TestCooldownReportsChosenDuration(t *testing.T) {
	delays := Delays{
		CooldownMin: time.Millisecond,
		CooldownMax: 4 * time.Millisecond,
	}
	p := NewWithSource(delays, rand.NewSource(7))

	d, err := p.Cooldown(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, delays.CooldownMin)
	assert.LessOrEqual(t, d, delays.CooldownMax)
}

func TestDegenerateRangeCollapsesToMin(t *testing.T) {
	p := NewWithSource(Delays{MinDelay: 2 * time.Millisecond, MaxDelay: 2 * time.Millisecond}, rand.NewSource(1))
	assert.Equal(t, 2*time.Millisecond, p.uniform(2*time.Millisecond, 2*time.Millisecond))
}

func TestSameSeedSameDraws(t *testing.T) {
	delays := Delays{CooldownMin: 45 * time.Second, CooldownMax: 120 * time.Second}
	a := NewWithSource(delays, rand.NewSource(99))
	b := NewWithSource(delays, rand.NewSource(99))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.uniform(delays.CooldownMin, delays.CooldownMax), b.uniform(delays.CooldownMin, delays.CooldownMax))
	}
}

func TestPauseHonorsCancellation(t *testing.T) {
	p := New(Delays{MinDelay: time.Minute, MaxDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Pause(ctx)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Pause did not return after cancellation")
	}
}

func TestSettle(t *testing.T) {
	p := New(Delays{Settle: time.Millisecond})
	start := time.Now()
	require.NoError(t, p.Settle(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)

	// Zero settle returns immediately
	require.NoError(t, New(Delays{}).Settle(context.Background()))
}

func TestNopPacer(t *testing.T) {
	var p Pacer = Nop{}
	require.NoError(t, p.Pause(context.Background()))
	d, err := p.Cooldown(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d)
	require.NoError(t, p.Settle(context.Background()))
}
