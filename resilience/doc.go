// Package resilience holds the concurrency primitives healthops builds its
// checks from.
//
//   - Race runs a probe against a timer and cancels the loser.
//   - CircuitBreaker stops probing a dependency that keeps failing.
//   - Retry and Do repeat client construction with backoff.
//   - Bulkhead bounds how many checks run at once.
//   - RateLimiter is a token bucket for the HTTP health endpoints.
//
// # Racing a probe
//
//	out, err := resilience.Race(ctx, 2*time.Second, func(ctx context.Context) (bool, error) {
//	    return client.Ping(ctx)
//	})
//	switch {
//	case err != nil:
//	    // ctx ended before either side finished
//	case !out.Completed:
//	    // the timer won; the probe's context is already cancelled
//	default:
//	    // out.Value, out.Err come from the probe
//	}
//
// A negative timeout (NoTimeout) disables the timer.
package resilience
