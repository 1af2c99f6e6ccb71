package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError marks an operation that exceeded its configured deadline.
// Callers can distinguish a slow oracle from a failing one with errors.As.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Limit)
}

// Timeout satisfies the net.Error convention
func (e *TimeoutError) Timeout() bool { return true }

// withTimeout runs fn under a deadline, converting a deadline hit into a
// typed TimeoutError
func withTimeout(ctx context.Context, limit time.Duration, op string, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err := fn(opCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Limit: limit}
	}
	return err
}
