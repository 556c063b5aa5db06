// README: Navigation session state and the guidance snapshot published to clients.
package navigation

import (
	"time"

	"wayfarer/internal/types"
)

type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

const (
	MyLocationName  = "My Location"
	TextStart       = "Start navigation"
	TextContinue    = "Keep moving"
	TextApproaching = "Approaching your destination"
	TextArrived     = "You have arrived!"

	promptDistance = 200.0
)

// Guidance is a copy of everything the turn-by-turn UI shows.
type Guidance struct {
	State                  State         `json:"state"`
	SessionID              types.ID      `json:"session_id,omitempty"`
	Origin                 *types.Place  `json:"origin,omitempty"`
	Destination            *types.Place  `json:"destination,omitempty"`
	StepIndex              int           `json:"step_index"`
	StepCount              int           `json:"step_count"`
	CurrentInstruction     string        `json:"current_instruction"`
	NextInstruction        string        `json:"next_instruction"`
	Prompt                 string        `json:"prompt,omitempty"`
	DistanceToNextManeuver float64       `json:"distance_to_next_maneuver_m"`
	RemainingDistance      float64       `json:"remaining_distance_m"`
	RemainingTime          time.Duration `json:"remaining_time"`
	EstimatedArrival       time.Time     `json:"estimated_arrival"`
	ArrivalMessage         string        `json:"arrival_message,omitempty"`
}
