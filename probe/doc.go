// Package probe runs configurable health probes against vendor clients.
//
// An adapter supplies three things: the creation modes it accepts, a
// Factory that builds its client for a Mode, and a ProbeFunc that makes one
// read-only call. New combines them into a Check, which implements
// health.Checker and runs each invocation through a fixed sequence:
//
//  1. A done context yields Unhealthy "Cancellation requested." before any
//     other work.
//  2. Options are looked up by check name; none yields "Missing configuration."
//  3. Options are validated (see Validate and ValidateFor).
//  4. The client is taken from Services (Registry mode) or from a
//     cache.Clients shared between checks, built at most once per name.
//  5. The probe races opts.Timeout (see resilience.Race).
//  6. The outcome is mapped to Healthy, Degraded or Unhealthy (see MapStatus).
//
// Creation modes are a closed set of value types implementing Mode. Each
// carries exactly the fields it needs; validation reports the first missing
// or malformed field with a message naming the mode.
package probe
