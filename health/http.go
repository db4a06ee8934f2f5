package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"
)

// LivenessHandler reports that the process is up. It never runs checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs every check and answers 503 only when the overall
// status is unhealthy. A degraded dependency keeps the instance ready.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		status := agg.OverallStatus(results)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode(status))
		switch status {
		case StatusHealthy:
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// Report is the JSON body of the detailed health endpoint.
type Report struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON form of a single Result.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewCheckResponse converts a Result into its JSON form.
func NewCheckResponse(result Result) CheckResponse {
	resp := CheckResponse{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

// NewReport builds a Report from a set of results.
func NewReport(status Status, results map[string]Result) Report {
	report := Report{
		Status:    status.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckResponse, len(results)),
	}
	for name, result := range results {
		report.Checks[name] = NewCheckResponse(result)
	}
	return report
}

// DetailedHandler runs every check and writes a JSON Report.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		status := agg.OverallStatus(results)
		writeJSON(w, statusCode(status), NewReport(status, results))
	}
}

// SingleCheckHandler runs one check. The name comes from the {name} path
// wildcard, e.g. when mounted at "GET /health/{name}".
func SingleCheckHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		result, err := agg.Check(r.Context(), name)
		if errors.Is(err, ErrCheckerNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":     err.Error(),
				"available": sortedNames(agg),
			})
			return
		}

		writeJSON(w, statusCode(result.Status), NewCheckResponse(result))
	}
}

// RegisterHandlers mounts the standard endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(agg))
	mux.HandleFunc("GET /health", DetailedHandler(agg))
	mux.HandleFunc("GET /health/{name}", SingleCheckHandler(agg))
}

func statusCode(status Status) int {
	if status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func sortedNames(agg *Aggregator) []string {
	names := agg.CheckerNames()
	sort.Strings(names)
	return names
}
