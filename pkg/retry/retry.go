// Package retry provides a context-aware retry engine with configurable
// backoff. The scanning-service client wraps every API call in it so that
// transient network failures and 5xx responses do not abort a report run.
//
// Three strategies are supported:
//   - Exponential: delay doubles each attempt (1s, 2s, 4s, …)
//   - Linear: delay grows linearly (1s, 2s, 3s, …)
//   - Constant: delay stays the same each attempt
//
// Usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.ping(ctx)
//	})
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy defines the backoff algorithm.
type Strategy int

const (
	// Exponential doubles the delay each attempt: initDelay * 2^attempt.
	Exponential Strategy = iota
	// Linear increases the delay linearly: initDelay * (attempt+1).
	Linear
	// Constant uses the same delay between every attempt.
	Constant
)

// Config controls retry behaviour.
type Config struct {
	MaxAttempts int           // Total attempts (including the first). 0 means no-op.
	InitDelay   time.Duration // Base delay before first retry.
	MaxDelay    time.Duration // Upper bound on any single delay.
	Strategy    Strategy      // Backoff algorithm.
	Jitter      bool          // Add ±25% random jitter to each delay.
}

// DefaultConfig returns the API-call default: 3 attempts, exponential
// backoff from 1s to 15s with jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   1 * time.Second,
		MaxDelay:    15 * time.Second,
		Strategy:    Exponential,
		Jitter:      true,
	}
}

// Polling returns a constant-interval config for status polling loops.
// attempts bounds the loop; callers usually also carry a context deadline.
func Polling(interval time.Duration, attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		InitDelay:   interval,
		MaxDelay:    interval,
		Strategy:    Constant,
	}
}

// StopError wraps an error to signal that retrying should stop immediately.
// Used for permanent failures such as 4xx API responses.
type StopError struct {
	Err error
}

func (e *StopError) Error() string { return e.Err.Error() }
func (e *StopError) Unwrap() error { return e.Err }

// Stop wraps err so that Do returns it without further retries.
func Stop(err error) error {
	return &StopError{Err: err}
}

// sleeper abstracts waiting so tests can avoid real sleeps.
type sleeper interface {
	sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do executes fn up to cfg.MaxAttempts times, sleeping between failures
// according to the configured strategy. It returns nil on the first
// success, the wrapped error immediately when fn returns a StopError,
// ctx.Err() on cancellation, and otherwise the last error.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return doWithSleeper(ctx, cfg, fn, realSleeper{})
}

func doWithSleeper(ctx context.Context, cfg Config, fn func() error, s sleeper) error {
	if cfg.MaxAttempts <= 0 {
		return nil
	}

	var lastErr error
	for attempt := range cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var stop *StopError
		if errors.As(lastErr, &stop) {
			return stop.Err
		}

		if attempt < cfg.MaxAttempts-1 {
			if err := s.sleep(ctx, CalcDelay(cfg, attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// CalcDelay computes the sleep duration for a given attempt (0-indexed).
// Arithmetic runs in float64 and caps at MaxDelay before conversion, so
// large attempt numbers cannot overflow into negative durations.
func CalcDelay(cfg Config, attempt int) time.Duration {
	max := float64(cfg.MaxDelay)
	var f float64
	switch cfg.Strategy {
	case Exponential:
		f = float64(cfg.InitDelay) * math.Pow(2, float64(attempt))
	case Linear:
		f = float64(cfg.InitDelay) * float64(attempt+1)
	case Constant:
		f = float64(cfg.InitDelay)
	}
	if math.IsInf(f, 1) || f < 0 || f > max {
		f = max
	}
	delay := time.Duration(f)

	if cfg.Jitter && delay > 0 {
		quarter := int64(delay) / 4
		if quarter > 0 {
			j := time.Duration(rand.Int64N(quarter))
			if rand.IntN(2) == 0 {
				delay += j
			} else {
				delay -= j
			}
		}
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return delay
}
