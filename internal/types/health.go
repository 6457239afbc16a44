package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// HealthState is the connectivity state of the graph database.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateUnhealthy HealthState = "unhealthy"
)

func (s HealthState) String() string {
	return string(s)
}

// IsValid checks if the HealthState is a known value
func (s HealthState) IsValid() bool {
	switch s {
	case HealthStateHealthy, HealthStateUnhealthy:
		return true
	default:
		return false
	}
}

// UnmarshalJSON rejects unknown states.
func (s *HealthState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	state := HealthState(str)
	if !state.IsValid() {
		return fmt.Errorf("invalid health state: %s", str)
	}

	*s = state
	return nil
}

// HealthStatus is the result of a connectivity probe.
type HealthStatus struct {
	State     HealthState   `json:"state"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Healthy creates a HealthStatus in the healthy state.
func Healthy(message string, latency time.Duration) HealthStatus {
	return HealthStatus{
		State:     HealthStateHealthy,
		Message:   message,
		Latency:   latency,
		CheckedAt: time.Now(),
	}
}

// Unhealthy creates a HealthStatus in the unhealthy state.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{
		State:     HealthStateUnhealthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// IsHealthy returns true if the health state is healthy.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}
