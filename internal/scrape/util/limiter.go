package util

import (
	"context"

	"golang.org/x/time/rate"
)

// RequestLimiter paces outbound requests to the career portal so pagination
// and detail lookups stay polite.
type RequestLimiter struct {
	lim *rate.Limiter
}

func NewRequestLimiter(reqPerSec float64, burst int) *RequestLimiter {
	if reqPerSec <= 0 {
		reqPerSec = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RequestLimiter{lim: rate.NewLimiter(rate.Limit(reqPerSec), burst)}
}

func (l *RequestLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}
