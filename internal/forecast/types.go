package forecast

import (
	"encoding/json"
	"fmt"
)

// Request is the body sent to the forecast backend.
type Request struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ForecastPoint is one backend-reported prediction. PM25 is in µg/m³ and
// Timestamp is ISO-8601 as delivered by the backend.
type ForecastPoint struct {
	Latitude  float64
	Longitude float64
	PM25      float64
	Timestamp string
}

// Status is the lifecycle of a forecast request.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// State is a snapshot of the controller's request lifecycle.
type State struct {
	Status  Status `json:"status"`
	Loading bool   `json:"loading"`
	Message string `json:"message,omitempty"`
}
