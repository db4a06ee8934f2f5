package probe

import "github.com/jonwraymond/healthops/health"

// Verdict is what a probe reports when it completes in time. The zero
// Verdict passes.
type Verdict struct {
	Status  health.Status
	Message string
	Details map[string]any
}

// Pass reports success.
func Pass() Verdict {
	return Verdict{Status: health.StatusHealthy}
}

// Warn reports a reachable service in a marginal state.
func Warn(message string) Verdict {
	return Verdict{Status: health.StatusDegraded, Message: message}
}

// Fail reports a reachable service that is not usable, for example
// "Container `orders` does not exist."
func Fail(message string) Verdict {
	return Verdict{Status: health.StatusUnhealthy, Message: message}
}

// WithDetails returns a copy of v carrying details.
func (v Verdict) WithDetails(details map[string]any) Verdict {
	v.Details = details
	return v
}

// MapStatus turns the outcome of a timed probe into a result. Exactly one
// branch applies:
//
//	not completed     -> Degraded  "Degraded"          health.ErrCheckTimeout
//	completed, err    -> Unhealthy "Unexpected error." err
//	completed, Fail   -> Unhealthy verdict message     health.ErrCheckFailed
//	completed, Warn   -> Degraded  verdict message
//	completed, Pass   -> Healthy   "Healthy"
//
// Verdict details are carried on the completed branches without an error.
func MapStatus(completed bool, v Verdict, err error) health.Result {
	switch {
	case !completed:
		return health.Degraded(MsgDegraded).WithError(health.ErrCheckTimeout)
	case err != nil:
		return health.Unhealthy(MsgUnexpectedError, err)
	}

	switch v.Status {
	case health.StatusHealthy:
		return health.Healthy(MsgHealthy).WithDetails(v.Details)
	case health.StatusDegraded:
		return health.Degraded(orDefault(v.Message, MsgDegraded)).WithDetails(v.Details)
	default:
		return health.Unhealthy(orDefault(v.Message, MsgUnexpectedError), health.ErrCheckFailed).WithDetails(v.Details)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
