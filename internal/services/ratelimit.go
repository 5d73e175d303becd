package services

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultAskLimit  = 10
	DefaultAskWindow = time.Hour
)

// FailureRecorder is told about count queries that failed open.
type FailureRecorder interface {
	RateLimitCheckFailed()
}

// RateLimiter bounds how many questions a user may ask in a trailing window
// by counting their stored QA records. The check is count-then-compare and
// not atomic, so concurrent requests at the boundary can both pass.
type RateLimiter struct {
	counter  QACounter
	logger   *slog.Logger
	failures FailureRecorder
	now      func() time.Time
}

func NewRateLimiter(counter QACounter, logger *slog.Logger, failures FailureRecorder) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		counter:  counter,
		logger:   logger,
		failures: failures,
		now:      time.Now,
	}
}

// Allow reports whether userID has fewer than limit records newer than
// now-window. A failing count allows the request.
func (l *RateLimiter) Allow(ctx context.Context, userID string, limit int, window time.Duration) bool {
	windowStart := l.now().Add(-window)

	count, err := l.counter.CountQASince(ctx, userID, windowStart)
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
			"user_id", userID,
			"kind", errorKind(err),
			"error", err,
		)
		if l.failures != nil {
			l.failures.RateLimitCheckFailed()
		}
		return true
	}
	return count < int64(limit)
}
