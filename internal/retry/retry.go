// Package retry wraps a fallible operation with bounded attempts and
// exponential backoff, honoring the transient/fatal classification from
// errs so only meaningful failures are retried.
package retry

import (
	"time"

	"github.com/cclone/cclone/internal/errs"
)

// Policy controls attempt count and backoff. Defaults match the
// original implementation's retry policy.
type Policy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultPolicy returns the policy used when none is supplied.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// Do invokes operation until it succeeds, a non-transient error is
// returned, or attempts are exhausted. Success short-circuits.
func Do[T any](policy Policy, operation func() (T, error)) (T, error) {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPolicy()
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errs.IsTransient(err) || attempt == policy.MaxAttempts-1 {
			return zero, err
		}

		delay := scaledDelay(policy, attempt)
		time.Sleep(delay)
	}
	return zero, lastErr
}

func scaledDelay(policy Policy, attempt int) time.Duration {
	factor := 1.0
	for i := 0; i < attempt; i++ {
		factor *= policy.BackoffFactor
	}
	return time.Duration(float64(policy.InitialDelay) * factor)
}
