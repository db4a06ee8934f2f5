package probe

import (
	"errors"
	"testing"

	"github.com/jonwraymond/healthops/health"
)

func TestMapStatus(t *testing.T) {
	boom := errors.New("boom")
	details := map[string]any{"containers": 3}

	tests := []struct {
		name        string
		completed   bool
		verdict     Verdict
		err         error
		wantStatus  health.Status
		wantMessage string
		wantErr     error
	}{
		{"timed out", false, Pass(), nil, health.StatusDegraded, "Degraded", health.ErrCheckTimeout},
		{"timed out ignores late error", false, Verdict{}, boom, health.StatusDegraded, "Degraded", health.ErrCheckTimeout},
		{"error", true, Pass(), boom, health.StatusUnhealthy, "Unexpected error.", boom},
		{"error wins over fail", true, Fail("Container `orders` does not exist."), boom, health.StatusUnhealthy, "Unexpected error.", boom},
		{"fail", true, Fail("Container `orders` does not exist."), nil, health.StatusUnhealthy, "Container `orders` does not exist.", health.ErrCheckFailed},
		{"fail without message", true, Fail(""), nil, health.StatusUnhealthy, "Unexpected error.", health.ErrCheckFailed},
		{"warn", true, Warn("2 of 3 nodes ready"), nil, health.StatusDegraded, "2 of 3 nodes ready", nil},
		{"pass", true, Pass(), nil, health.StatusHealthy, "Healthy", nil},
		{"zero verdict passes", true, Verdict{}, nil, health.StatusHealthy, "Healthy", nil},
		{"pass ignores message", true, Verdict{Message: "ignored"}, nil, health.StatusHealthy, "Healthy", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapStatus(tt.completed, tt.verdict, tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if !errors.Is(got.Error, tt.wantErr) || (tt.wantErr == nil && got.Error != nil) {
				t.Errorf("Error = %v, want %v", got.Error, tt.wantErr)
			}
		})
	}

	got := MapStatus(true, Pass().WithDetails(details), nil)
	if got.Details["containers"] != 3 {
		t.Errorf("Details = %v, want %v", got.Details, details)
	}
}
