package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// newLimiter builds a request limiter from a per-minute budget. A zero or
// negative budget means unlimited and yields a nil limiter.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
