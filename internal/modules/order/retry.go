package order

import (
	"context"
	"errors"
	"time"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// RetryPolicy bounds every repository call with Timeout and retries transient failures
// with exponential backoff starting at BaseDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
}

func (p RetryPolicy) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	delay := p.BaseDelay

	for attempt := 1; ; attempt++ {
		err := p.once(ctx, op, call)
		if err == nil || !apperror.IsTransient(err) || attempt >= attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
}

func (p RetryPolicy) once(ctx context.Context, op string, call func(ctx context.Context) error) error {
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if p.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
	}
	defer cancel()

	err := call(callCtx)
	if err != nil && !apperror.IsTransient(err) && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &apperror.TransientError{Op: op, Err: err}
	}
	return err
}

type retryingRepository struct {
	next   Repository
	policy RetryPolicy
}

// WithRetry wraps repo so each call runs under policy.
func WithRetry(repo Repository, policy RetryPolicy) Repository {
	return &retryingRepository{next: repo, policy: policy}
}

func (r *retryingRepository) Insert(ctx context.Context, rec Record) (string, error) {
	var id string
	err := r.policy.do(ctx, "insert order", func(ctx context.Context) error {
		var err error
		id, err = r.next.Insert(ctx, rec)
		return err
	})
	return id, err
}

// UpdateFields retries like the other calls. A retry that fails its precondition may be
// looking at its own earlier attempt, committed before the connection dropped; when the
// stored record carries exactly these fields the update is reported as applied.
func (r *retryingRepository) UpdateFields(ctx context.Context, id string, pre Precondition, f Fields) (Record, error) {
	var rec Record
	attempt := 0
	err := r.policy.do(ctx, "update order", func(ctx context.Context) error {
		attempt++
		var err error
		rec, err = r.next.UpdateFields(ctx, id, pre, f)

		var conflict *apperror.ConcurrentModificationError
		if attempt > 1 && errors.As(err, &conflict) {
			if stored, getErr := r.next.GetByID(ctx, id); getErr == nil && f.appliedTo(stored) {
				rec, err = stored, nil
			}
		}
		return err
	})
	return rec, err
}

func (r *retryingRepository) GetByID(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := r.policy.do(ctx, "get order", func(ctx context.Context) error {
		var err error
		rec, err = r.next.GetByID(ctx, id)
		return err
	})
	return rec, err
}

func (r *retryingRepository) ListWhere(ctx context.Context, f Filter) ([]Record, error) {
	var recs []Record
	err := r.policy.do(ctx, "list orders", func(ctx context.Context) error {
		var err error
		recs, err = r.next.ListWhere(ctx, f)
		return err
	})
	return recs, err
}
