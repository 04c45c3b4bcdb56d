package retry

import (
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/timeutil"
)

type BackoffStrategy int

const (
	BackoffExponential BackoffStrategy = iota
	BackoffLinear
)

// RetryParam holds the parameters for retry logic.
// These parameters are passed from outside (e.g., config) and should not
// be known by the retry handler internally.
type RetryParam struct {
	BaseDelay    time.Duration
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
	Strategy     BackoffStrategy
	// Sleep replaces time.Sleep between attempts. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// NewRetryParam creates a new RetryParam with the given settings.
// The strategy defaults to exponential backoff.
func NewRetryParam(
	baseDelay time.Duration,
	jitter time.Duration,
	randomSeed int64,
	maxAttempts int,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	return RetryParam{
		BaseDelay:    baseDelay,
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoffParam,
		Strategy:     BackoffExponential,
	}
}

// WithLinearBackoff returns a copy that waits attempt * initial duration
// between attempts.
func (p RetryParam) WithLinearBackoff() RetryParam {
	p.Strategy = BackoffLinear
	return p
}

// WithSleeper returns a copy that waits through sleep instead of time.Sleep.
func (p RetryParam) WithSleeper(sleep func(time.Duration)) RetryParam {
	p.Sleep = sleep
	return p
}

// Result is the outcome of Retry: the value on success, the final error on
// failure, and how many times the function was invoked.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
