package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy is a bounded exponential backoff schedule. Each gateway owns its
// policy explicitly instead of relying on hidden retries in a collaborator.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy retries transient collaborator failures three times with a
// short exponential schedule.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Do runs op under the policy. It stops early on context cancellation or
// when op returns a permanent error.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	return backoff.Retry(ctx, backoff.Operation[T](op),
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxAttempts),
	)
}

// DoVoid runs an op with no result under the policy.
func DoVoid(ctx context.Context, p Policy, op func() error) error {
	_, err := Do(ctx, p, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// Permanent marks err as not worth retrying (configuration errors,
// malformed input). Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
