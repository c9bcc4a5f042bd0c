package llm

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/skillvet/skillvet/pkg/logger"
)

// executeWithRetry runs operation under the configured bounded retry
// policy. Every attempt is capped by the per-call timeout; retries apply
// only to transient failures, never to context cancellation.
func executeWithRetry(ctx context.Context, cfg Config, label string, operation func(ctx context.Context) error) error {
	var delayType retry.DelayTypeFunc
	switch cfg.Retry.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	default:
		delayType = retry.BackOffDelay
	}

	var attemptErrs []error

	err := retry.Do(
		func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
			defer cancel()

			err := operation(attemptCtx)
			if err != nil {
				attemptErrs = append(attemptErrs, err)
			}
			return err
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(cfg.Retry.Attempts)),
		retry.Delay(time.Duration(cfg.Retry.InitialDelay)*time.Millisecond),
		retry.DelayType(delayType),
		retry.MaxDelay(time.Duration(cfg.Retry.MaxDelay)*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", cfg.Retry.Attempts).
				WithField("call", label).
				Warn("retrying external service call")
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "%s failed after %d attempts", label, len(attemptErrs))
	}
	return nil
}

// isRetryableError reports whether the error is worth another attempt.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is never retried; a per-attempt deadline is, since the
	// next attempt gets a fresh timeout (retry.Context stops retries once
	// the outer context itself is done).
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"internal error",
		"quota exceeded",
		"rate limit",
		"too many requests",
		"overloaded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
