package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Generator so that at most requestsPerMinute calls start per minute.
// A non-positive limit returns next unchanged.
func RateLimited(next Generator, requestsPerMinute int) Generator {
	if requestsPerMinute <= 0 {
		return next
	}
	return &rateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

type rateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

func (r *rateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}
