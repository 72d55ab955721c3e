// Package resilience wraps outbound calls with a per-attempt timeout and a
// bounded, fixed-backoff retry.
package resilience

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/metrics"
)

// Policy bounds a single logical call.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

var DefaultPolicy = Policy{
	Timeout:    3 * time.Second,
	MaxRetries: 2,
	Backoff:    200 * time.Millisecond,
}

// ReadOnly returns the policy unchanged. Reads are idempotent.
func (p Policy) ReadOnly() Policy {
	return p
}

// WriteOnce keeps the timeout but disables retries.
func (p Policy) WriteOnce() Policy {
	p.MaxRetries = 0
	return p
}

// Classifier reports whether an error is worth another attempt.
type Classifier func(err error) bool

// TransientOnly retries transport-level failures and nothing else.
func TransientOnly(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return hasTransientPhrase(err)
}

// Never disables retries regardless of the error.
func Never(error) bool {
	return false
}

var transientPhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
	"eof",
}

func hasTransientPhrase(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Do runs fn under policy. Each attempt gets its own timeout derived from ctx.
// The final error is a StandardError unless fn already returned one.
func Do[T any](ctx context.Context, policy Policy, operation string, fn func(context.Context) (T, error), classify Classifier) (T, error) {
	var zero T
	if classify == nil {
		classify = TransientOnly
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(policy.Backoff):
			case <-ctx.Done():
				metrics.ResilientCallAttempts.WithLabelValues(operation, "cancelled").Inc()
				return zero, mapFailure(operation, ctx.Err(), attempt)
			}
		}

		result, err := runAttempt(ctx, policy.Timeout, fn)
		if err == nil {
			metrics.ResilientCallAttempts.WithLabelValues(operation, "success").Inc()
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			metrics.ResilientCallAttempts.WithLabelValues(operation, "cancelled").Inc()
			return zero, mapFailure(operation, err, attempt+1)
		}
		if !classify(err) || attempt == policy.MaxRetries {
			metrics.ResilientCallAttempts.WithLabelValues(operation, "failure").Inc()
			return zero, mapFailure(operation, err, attempt+1)
		}
		metrics.ResilientCallAttempts.WithLabelValues(operation, "retry").Inc()
	}

	return zero, mapFailure(operation, lastErr, policy.MaxRetries+1)
}

// Exec is Do for calls without a result.
func Exec(ctx context.Context, policy Policy, operation string, fn func(context.Context) error, classify Classifier) error {
	_, err := Do(ctx, policy, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, classify)
	return err
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := fn(attemptCtx)
	if err != nil && attemptCtx.Err() == context.DeadlineExceeded && !stderrors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return result, err
}

func mapFailure(operation string, err error, attempts int) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.WithMetadata("attempts", attempts)
	}

	wrapped := fmt.Errorf("operation '%s' failed after %d attempt(s): %w", operation, attempts, err)
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, wrapped).WithMetadata("attempts", attempts)
	}
	return errors.NewExternalServiceError(operation, wrapped).WithMetadata("attempts", attempts)
}
