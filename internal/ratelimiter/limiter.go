package ratelimiter

import (
	"sync"

	"golang.org/x/time/rate"
)

// ModeratorLimiters holds one token bucket limiter per moderator, created
// lazily on first use. Each limiter enforces a steady-state decision rate;
// burst equals the rate so no extra burst capacity accumulates beyond the
// configured per-second maximum.
//
// This is an in-process guard against a runaway moderator client, not a
// fairness mechanism; with several instances behind a load balancer each
// instance enforces the limit independently.
type ModeratorLimiters struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	perSec   rate.Limit
	burst    int
}

// New creates a ModeratorLimiters with ratePerSec decisions per second per
// moderator.
func New(ratePerSec int) *ModeratorLimiters {
	return &ModeratorLimiters{
		limiters: make(map[int64]*rate.Limiter),
		perSec:   rate.Limit(ratePerSec),
		burst:    ratePerSec,
	}
}

// Allow reports whether the moderator may make a decision right now.
// Non-blocking: handlers answer 429 rather than queueing the caller.
func (ml *ModeratorLimiters) Allow(moderatorID int64) bool {
	ml.mu.Lock()
	limiter, ok := ml.limiters[moderatorID]
	if !ok {
		limiter = rate.NewLimiter(ml.perSec, ml.burst)
		ml.limiters[moderatorID] = limiter
	}
	ml.mu.Unlock()

	return limiter.Allow()
}
