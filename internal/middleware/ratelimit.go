package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AccountLimiter throttles inbound chat events per account so one noisy
// account cannot starve the rest.
type AccountLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*accountEntry
	limit    rate.Limit
	burst    int
}

type accountEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewAccountLimiter(eventsPerMinute, burst int) *AccountLimiter {
	return &AccountLimiter{
		limiters: make(map[int64]*accountEntry),
		limit:    rate.Limit(float64(eventsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (l *AccountLimiter) Allow(accountID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.limiters[accountID]
	if !ok {
		e = &accountEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[accountID] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Run prunes idle limiters until the context is canceled, keeping the
// per-account map from growing without bound.
func (l *AccountLimiter) Run(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(maxIdle)
		}
	}
}

// Prune drops limiters idle for longer than maxIdle.
func (l *AccountLimiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for accountID, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, accountID)
			removed++
		}
	}
	return removed
}
