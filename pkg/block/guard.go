package block

import (
	"context"

	"igcounts/pkg/logger"
	"igcounts/pkg/ratelimit"
)

// Page exposes the live state of the search session for re-detection
type Page interface {
	// URL returns the current address
	URL(ctx context.Context) (string, error)
	// Text returns the rendered page text
	Text(ctx context.Context) (string, error)
}

// Guard owns the recovery flow for a blocked session. Recovery is
// human-in-the-loop: the process stops until the operator has dealt with
// the challenge.
type Guard struct {
	detector Detector
	pacer    ratelimit.Pacer
	notify   func(title, message string)
	ack      func(ctx context.Context, message string) error
	log      logger.Logger
}

// NewGuard wires the recovery flow. notify may be nil. ack must block until
// the operator confirms, honoring ctx.
func NewGuard(pacer ratelimit.Pacer, notify func(title, message string), ack func(ctx context.Context, message string) error, log logger.Logger) *Guard {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Guard{
		pacer:  pacer,
		notify: notify,
		ack:    ack,
		log:    log,
	}
}

// Inspect classifies page state without side effects
func (g *Guard) Inspect(url, body string) State {
	return g.detector.Inspect(url, body)
}

// Recover runs one operator-assisted recovery: signal the operator, wait
// for their acknowledgment, then re-detect. A cleared page settles briefly;
// a still-blocked page cools down for the randomized long pause. Either way
// the session is treated as clear afterwards; a persisting challenge trips
// detection again on the next interaction, so the operator keeps control
// without an automated retry ladder here.
func (g *Guard) Recover(ctx context.Context, page Page) error {
	if g.notify != nil {
		g.notify("Challenge detected", "Solve it in the browser window, then press Enter.")
	}
	g.log.Warn("Challenge page detected, waiting for operator")

	if err := g.ack(ctx, "Solve the challenge in the browser window, then press Enter to continue"); err != nil {
		return err
	}

	if g.redetect(ctx, page) == StateBlocked {
		delay, err := g.pacer.Cooldown(ctx)
		if err != nil {
			return err
		}
		g.log.WarnWithFields("Still blocked after acknowledgment, cooled down", map[string]interface{}{
			"cooldown": delay,
		})
		return nil
	}

	g.log.Info("Challenge cleared, settling before resume")
	return g.pacer.Settle(ctx)
}

// redetect re-reads the page. A page that cannot be read counts as still
// blocked; the cooldown path is the safe one.
func (g *Guard) redetect(ctx context.Context, page Page) State {
	url, err := page.URL(ctx)
	if err != nil {
		g.log.WithError(err).Warn("Could not re-read page address")
		return StateBlocked
	}
	text, err := page.Text(ctx)
	if err != nil {
		g.log.WithError(err).Warn("Could not re-read page text")
		return StateBlocked
	}
	return g.detector.Inspect(url, text)
}
