package services

import (
	"context"
	"time"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/metrics"
)

const maxBackoff = 10 * time.Second

// InvokeFunc performs one attempt against one model.
type InvokeFunc func(ctx context.Context, model string) (models.InvocationResult, error)

// FallbackController walks the candidate models in order. Transient failures
// retry the same model up to MaxAttempts attempts, anything else moves on to
// the next model.
type FallbackController struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
	Metrics     *metrics.Metrics
}

func NewFallbackController(maxAttempts int, m *metrics.Metrics) *FallbackController {
	return &FallbackController{
		MaxAttempts: maxAttempts,
		Backoff:     ExponentialBackoff,
		Sleep:       SleepContext,
		Metrics:     m,
	}
}

// ExponentialBackoff waits 1s, 2s, 4s... capped at 10s.
func ExponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		return maxBackoff
	}
	return min(time.Duration(1<<uint(attempt-1))*time.Second, maxBackoff)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run returns the first successful result. When every model fails it returns
// ErrFallbackExhausted wrapping the last failure. Cancellation of ctx is
// returned as is.
func (c *FallbackController) Run(ctx context.Context, candidates models.ModelCandidates, invoke InvokeFunc) (models.InvocationResult, error) {
	log := logger.FromContext(ctx)
	maxAttempts := max(c.MaxAttempts, 1)

	var lastErr error
	for _, model := range candidates {
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return models.InvocationResult{}, err
			}

			log.Debug("invoking model",
				"model", model,
				"attempt", attempt)

			res, err := invoke(ctx, model)
			if err == nil {
				c.Metrics.ObserveAttempt(model, metrics.OutcomeSuccess)
				res.Model = model
				res.Attempt = attempt
				return res, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.InvocationResult{}, ctxErr
			}
			lastErr = err

			if !apperrors.IsTransient(err) {
				c.Metrics.ObserveAttempt(model, metrics.OutcomePermanent)
				log.Warn("model failed, trying next candidate",
					"model", model,
					"attempt", attempt,
					"error", err)
				break
			}

			c.Metrics.ObserveAttempt(model, metrics.OutcomeTransient)
			log.Warn("transient model failure",
				"model", model,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err)

			if attempt < maxAttempts {
				if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
					return models.InvocationResult{}, err
				}
			}
		}
	}

	return models.InvocationResult{}, apperrors.ErrFallbackExhausted.
		WithError(lastErr).
		WithContext("models", len(candidates))
}

func (c *FallbackController) backoff(attempt int) time.Duration {
	if c.Backoff == nil {
		return ExponentialBackoff(attempt)
	}
	return c.Backoff(attempt)
}

func (c *FallbackController) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep == nil {
		return SleepContext(ctx, d)
	}
	return c.Sleep(ctx, d)
}
