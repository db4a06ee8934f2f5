package resilience

import (
	"context"
	"time"
)

// NoTimeout disables the timer in Race.
const NoTimeout time.Duration = -1

// Outcome is what Race observed. Completed is false when the timer won;
// Value and Err are then zero.
type Outcome[T any] struct {
	Completed bool
	Value     T
	Err       error
}

// Race runs op against a timer. op gets a child of ctx that is cancelled as
// soon as Race returns, so a losing op is told to stop and its late result
// is dropped on a buffered channel.
//
// A negative timeout waits for op or ctx only. A zero timeout has already
// expired, so op is not started. When ctx ends first Race returns
// ctx.Err(); a timer win is not an error.
func Race[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (Outcome[T], error) {
	if err := ctx.Err(); err != nil {
		return Outcome[T]{}, err
	}
	if timeout == 0 {
		return Outcome[T]{}, nil
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		v, err := op(opCtx)
		done <- result{value: v, err: err}
	}()

	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case r := <-done:
		return Outcome[T]{Completed: true, Value: r.value, Err: r.err}, nil
	case <-expired:
		return Outcome[T]{}, nil
	case <-ctx.Done():
		return Outcome[T]{}, ctx.Err()
	}
}
