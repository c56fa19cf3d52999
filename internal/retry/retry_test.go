package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclone/cclone/internal/errs"
)

func TestDoSucceedsWithoutRetry(t *testing.T) {
	calls := 0
	result, err := Do(DefaultPolicy(), func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 5, InitialDelay: time.Millisecond, BackoffFactor: 2}
	result, err := Do(policy, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errs.New(errs.FileLocked, "locked")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Equal(t, 3, calls)
}

func TestDoStopsImmediatelyOnFatal(t *testing.T) {
	calls := 0
	_, err := Do(DefaultPolicy(), func() (int, error) {
		calls++
		return 0, errs.New(errs.PermissionDenied, "denied")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttemptsOnPersistentTransient(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 2}
	_, err := Do(policy, func() (int, error) {
		calls++
		return 0, errs.New(errs.FileLocked, "still locked")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
