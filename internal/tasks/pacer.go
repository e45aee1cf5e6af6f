package tasks

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer throttles platform search calls during a migration.
type Pacer interface {
	// Wait blocks until the next call is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// RatePacer implements [Pacer] with a token bucket.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer creates a pacer allowing searchesPerSecond calls.
// A rate <= 0 disables throttling.
func NewRatePacer(searchesPerSecond float64) *RatePacer {
	limit := rate.Inf
	if searchesPerSecond > 0 {
		limit = rate.Limit(searchesPerSecond)
	}
	return &RatePacer{limiter: rate.NewLimiter(limit, 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
