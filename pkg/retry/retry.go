package retry

import (
	"context"
	"fmt"
	"time"
)

// Backoff controls how the delay grows between attempts.
type Backoff int

const (
	// BackoffExponential multiplies the delay by Factor after each attempt.
	BackoffExponential Backoff = iota

	// BackoffLinear adds InitialDelay after each attempt (1s, 2s, 3s, ...).
	BackoffLinear
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Factor          float64
	Strategy        Backoff
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns a default retry configuration with 1 minute max timeout
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		Factor:          2.0,
		Strategy:        BackoffExponential,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// RegistryConfig returns the retry policy used for provider registry calls:
// three attempts with linearly increasing delays.
func RegistryConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     3 * time.Second,
		Strategy:     BackoffLinear,
	}
}

// Do executes the given function with backoff retry logic
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog executes the function with retry and logs each attempt
func DoWithLog(ctx context.Context, cfg Config, serviceName string, fn func() error, logFn func(attempt int, err error, nextDelay time.Duration)) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%s: retry aborted after %d attempts: %w (last error: %v)", name(serviceName), attempt-1, ctx.Err(), lastErr)
			}
			return fmt.Errorf("%s: retry aborted: %w", name(serviceName), ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("%s: max retry attempts (%d) exceeded: %w", name(serviceName), cfg.MaxAttempts, lastErr)
		}

		if logFn != nil {
			logFn(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: retry aborted after %d attempts: %w (last error: %v)", name(serviceName), attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}

		delay = nextDelay(cfg, delay)
	}

	return fmt.Errorf("%s: max retry attempts exceeded: %w", name(serviceName), lastErr)
}

func nextDelay(cfg Config, current time.Duration) time.Duration {
	var next time.Duration
	switch cfg.Strategy {
	case BackoffLinear:
		next = current + cfg.InitialDelay
	default:
		next = time.Duration(float64(current) * cfg.Factor)
	}
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}

func name(serviceName string) string {
	if serviceName == "" {
		return "retry"
	}
	return serviceName
}
