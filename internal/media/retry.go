package media

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

type Backoff int

const (
	// BackoffNone retries immediately.
	BackoffNone Backoff = iota
	// BackoffFixed waits Delay between attempts.
	BackoffFixed
	// BackoffRandom waits Delay plus a random jitter up to MaxDelay.
	BackoffRandom
)

// RetryPolicy wraps an outbound call with a fixed attempt budget. Only
// Transient failures are retried; typed errors pass through untouched
// after the first attempt. Exhausting the budget converts the last
// transient error into a terminal DataFetchError.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	Backoff  Backoff
}

// Attempt budgets and delays per platform, matching the upstream API
// behavior each one tolerates.
var (
	DouyinRetry   = RetryPolicy{Attempts: 5, Delay: time.Second, Backoff: BackoffFixed}
	XhsRetry      = RetryPolicy{Attempts: 5, Delay: 2 * time.Second, MaxDelay: 10 * time.Second, Backoff: BackoffRandom}
	BilibiliRetry = RetryPolicy{Attempts: 5, Delay: time.Second, Backoff: BackoffFixed}
	KuaishouRetry = RetryPolicy{Attempts: 3, Backoff: BackoffNone}
)

func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	opts := []retry.Option{
		retry.Attempts(attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(Retryable),
	}
	switch p.Backoff {
	case BackoffFixed:
		opts = append(opts, retry.Delay(p.Delay), retry.DelayType(retry.FixedDelay))
	case BackoffRandom:
		jitter := p.MaxDelay - p.Delay
		if jitter < 0 {
			jitter = 0
		}
		opts = append(opts,
			retry.Delay(p.Delay),
			retry.MaxJitter(jitter),
			retry.DelayType(retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)),
		)
	default:
		opts = append(opts, retry.Delay(0), retry.DelayType(retry.FixedDelay))
	}

	err := retry.Do(op, opts...)
	if err == nil {
		return nil
	}
	if Retryable(err) {
		return &DataFetchError{Msg: "retry budget exhausted", Err: err}
	}
	return err
}
