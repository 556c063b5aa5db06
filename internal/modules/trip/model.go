// README: Trip log entry for one navigation session.
package trip

import (
	"errors"
	"time"

	"wayfarer/internal/types"
)

var ErrNotFound = errors.New("trip not found")

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeArrived    Outcome = "arrived"
	OutcomeStopped    Outcome = "stopped"
)

type Trip struct {
	ID               types.ID      `json:"id"`
	SessionID        types.ID      `json:"session_id"`
	Mode             string        `json:"mode"`
	Origin           types.Place   `json:"origin"`
	Destination      types.Place   `json:"destination"`
	DistanceMeters   float64       `json:"distance_m"`
	ExpectedDuration time.Duration `json:"expected_duration"`
	Outcome          Outcome       `json:"outcome"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       *time.Time    `json:"finished_at,omitempty"`
}
