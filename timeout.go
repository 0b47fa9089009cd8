// timeout.go
// ----------
// The timeout guard bounds one blocking provider call by a deadline. The call
// runs in its own goroutine; if the deadline elapses first, the guard returns
// *TimeoutError and abandons the call. Abandonment is fire-and-forget: any
// provider-side effects of the overrun call are outside this layer's control.
package adbridge

import (
	"context"
	"errors"
	"time"
)

// DefaultNetworkTimeout is the longest the gateway waits for a single
// provider call.
const DefaultNetworkTimeout = 10 * time.Minute

type guardResult[T any] struct {
	value T
	err   error
}

// guardedCall runs fn under a deadline of d. A caller context that is already
// cancelled or expires sooner takes precedence over d.
func guardedCall[T any](ctx context.Context, d time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	// Buffered so the abandoned goroutine can still deliver and exit.
	ch := make(chan guardResult[T], 1)
	go func() {
		v, err := fn(ctx)
		ch <- guardResult[T]{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, &TimeoutError{Op: op, Timeout: d}
		}
		return zero, ctx.Err()
	}
}
