package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out consecutive calls by a fixed pause: the first Wait returns
// at once, each following one no sooner than pause after the previous.
type Pacer struct {
	name    string
	pause   time.Duration
	limiter *rate.Limiter
}

// NewPacer creates a pacer. A zero pause disables waiting.
func NewPacer(name string, pause time.Duration) *Pacer {
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &Pacer{
		name:    name,
		pause:   pause,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited > time.Millisecond {
		slog.Debug("paced", "pacer", p.name, "waited", waited.Round(time.Millisecond))
	}
	return nil
}

// Pause returns the configured pause.
func (p *Pacer) Pause() time.Duration {
	return p.pause
}
