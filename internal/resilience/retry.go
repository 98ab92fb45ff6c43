// Package resilience provides the retry primitive that guards LLM requests.
//
// The central type is [Retrier], which re-runs a failing call with exponential
// backoff as long as the failure is classified as transient. Classification
// defaults to [llm.IsRetryable], so rate limits, gateway errors and connection
// faults are retried while authentication and validation failures surface
// immediately.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/skitlabs/lampoon/pkg/provider/llm"
)

// RetryConfig holds tuning knobs for a [Retrier].
type RetryConfig struct {
	// Name is a human-readable label used in log messages.
	Name string

	// MaxRetries is the number of additional attempts after the initial call.
	// Default: 5 (so at most 6 requests per call).
	MaxRetries int

	// BaseDelay is the backoff unit. Successive retries wait BaseDelay,
	// 2×BaseDelay, 4×BaseDelay, and so on. Default: 1s.
	BaseDelay time.Duration

	// AttemptTimeout bounds each individual attempt. An attempt that exceeds
	// it fails with context.DeadlineExceeded, which is transient and consumes
	// one retry. Zero means attempts are bounded only by the caller's context.
	AttemptTimeout time.Duration

	// Classify decides whether an error is worth retrying.
	// Default: [llm.IsRetryable].
	Classify func(error) bool

	// OnRetry, if non-nil, is invoked before each backoff sleep. attempt is
	// 1-based. Used to feed retry metrics without coupling this package to the
	// metrics registry.
	OnRetry func(ctx context.Context, attempt int, delay time.Duration, err error)
}

// Retrier re-runs failing calls with exponential backoff.
// It is safe for concurrent use from multiple goroutines.
type Retrier struct {
	name           string
	maxRetries     int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	classify       func(error) bool
	onRetry        func(ctx context.Context, attempt int, delay time.Duration, err error)
}

// NewRetrier creates a [Retrier] with the supplied configuration.
// Zero-value config fields are replaced with sensible defaults.
func NewRetrier(cfg RetryConfig) *Retrier {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.Classify == nil {
		cfg.Classify = llm.IsRetryable
	}
	return &Retrier{
		name:           cfg.Name,
		maxRetries:     cfg.MaxRetries,
		baseDelay:      cfg.BaseDelay,
		attemptTimeout: cfg.AttemptTimeout,
		classify:       cfg.Classify,
		onRetry:        cfg.OnRetry,
	}
}

// Do runs fn, retrying transient failures until the retry budget is exhausted.
// The error of the last attempt is returned. Cancellation of ctx stops the
// loop: an attempt already in flight is cut short through its derived context,
// and no further attempts are started.
func (r *Retrier) Do(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if attempt >= r.maxRetries || !r.classify(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		delay := r.baseDelay << attempt
		slog.Warn("retrying after transient failure",
			"name", r.name,
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"delay", delay,
			"error", err)
		if r.onRetry != nil {
			r.onRetry(ctx, attempt+1, delay, err)
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			// Cancelled during backoff — the last attempt's error is the
			// interesting one.
			return err
		}
	}
}

// attempt runs fn once, bounded by the per-attempt timeout when configured.
func (r *Retrier) attempt(ctx context.Context, fn func(context.Context) error) error {
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// DoWithResult runs fn through r and additionally returns its result.
//
// This is a package-level function rather than a method because Go does not
// support type parameters on methods.
func DoWithResult[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
