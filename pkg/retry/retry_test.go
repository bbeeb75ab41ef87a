package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), fastPolicy(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), fastPolicy(), func() (string, error) {
		attempts++
		return "", errors.New("still down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoVoidRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := DoVoid(context.Background(), fastPolicy(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	attempts := 0
	fatal := errors.New("bad dimension")
	_, err := Do(context.Background(), fastPolicy(), func() (string, error) {
		attempts++
		return "", Permanent(fatal)
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}
