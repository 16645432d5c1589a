package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carefinder/backend/pkg/retry"
	"github.com/stretchr/testify/assert"
)

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Strategy:     retry.BackoffLinear,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	sentinel := errors.New("registry down")
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		return sentinel
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoWithLog_ReportsEachFailedAttempt(t *testing.T) {
	var logged []int
	err := retry.DoWithLog(context.Background(), fastConfig(), "test", func() error {
		return errors.New("boom")
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged = append(logged, attempt)
	})

	assert.Error(t, err)
	// The final attempt returns the error without a retry log line.
	assert.Equal(t, []int{1, 2}, logged)
}

func TestDo_LinearBackoffGrowsDelay(t *testing.T) {
	cfg := retry.Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		Strategy:     retry.BackoffLinear,
	}

	var delays []time.Duration
	_ = retry.DoWithLog(context.Background(), cfg, "test", func() error {
		return errors.New("boom")
	}, func(attempt int, err error, nextDelay time.Duration) {
		delays = append(delays, nextDelay)
	})

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
}

func TestDo_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		Strategy:     retry.BackoffLinear,
	}, func() error {
		attempts++
		cancel()
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRegistryConfig(t *testing.T) {
	cfg := retry.RegistryConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, retry.BackoffLinear, cfg.Strategy)
}
