package qerasure

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements RetryStrategy
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// NoRetry makes exactly one attempt.
func NoRetry() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1, Strategy: &ExponentialBackoff{}}
}

// WithRetry configures retry behavior for a job
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *Job) {
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
		}
	}
}

// WithRetryFilter stops retrying as soon as filter rejects an error.
func WithRetryFilter(filter func(error) bool) JobOption {
	return func(j *Job) {
		if j.RetryPolicy == nil {
			j.RetryPolicy = NoRetry()
		}

		j.RetryPolicy.Filter = filter
	}
}

/*
submit runs the job against a device, resubmitting according to the job's
policy and pacing every attempt through limiter when one is set. Context
cancellation is honored between attempts only; an attempt in flight is never
interrupted.
*/
func submit(
	ctx context.Context, device Device, job *Job, limiter *RateLimiter, metrics *Metrics, logger *log.Logger,
) (*Result, error) {
	policy := job.RetryPolicy
	if policy == nil || policy.MaxAttempts < 1 {
		policy = NoRetry()
	}

	for job.Attempt = 0; job.Attempt < policy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := policy.Strategy.NextDelay(job.Attempt)
			logger.Warn("retrying submission", "job", job.ID, "attempt", job.Attempt+1, "delay", delay)
			metrics.recordRetry()

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		job.StartTime = time.Now()
		result, err := device.Run(ctx, job.Circuit, job.Shots)
		metrics.recordSubmission(job.Condition, job.StartTime, job.Shots, err == nil)

		if err == nil {
			return result, nil
		}

		job.LastError = err
		logger.Error("submission failed", "job", job.ID, "attempt", job.Attempt+1, "err", err)

		if policy.Filter != nil && !policy.Filter(err) {
			break
		}
	}

	return nil, fmt.Errorf("all attempts failed for job %s: %w", job.ID, job.LastError)
}
