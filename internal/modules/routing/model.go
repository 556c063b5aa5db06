// README: Route model shared by the coordinator, progress tracker and camera.
package routing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"wayfarer/internal/geomath"
	"wayfarer/internal/types"
)

var (
	ErrNoRoute       = errors.New("no route found")
	ErrEmptyRoute    = errors.New("route has no steps")
	ErrSuperseded    = errors.New("route request superseded")
	ErrUnknownRoute  = errors.New("route is not an alternative")
	ErrBadRequest    = errors.New("invalid route request")
	ErrRejected      = errors.New("route provider rejected request")
	ErrNoActiveRoute = errors.New("no active route")
)

// TransportError is returned once every retry attempt failed at the transport level.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("route request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type TravelMode string

const (
	ModeDrive   TravelMode = "drive"
	ModeWalk    TravelMode = "walk"
	ModeTransit TravelMode = "transit"
)

func (m TravelMode) IsValid() bool {
	switch m {
	case ModeDrive, ModeWalk, ModeTransit:
		return true
	}
	return false
}

// IdealSpeed is the free-flow speed in metres per second used by the traffic heuristic.
func (m TravelMode) IdealSpeed() float64 {
	switch m {
	case ModeDrive:
		return 50.0 / 3.6
	case ModeWalk:
		return 5.0 / 3.6
	case ModeTransit:
		return 30.0 / 3.6
	default:
		return 40.0 / 3.6
	}
}

func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown travel mode %q", ErrBadRequest, s)
	}
	return m, nil
}

type StepMode string

const (
	StepDrive   StepMode = "drive"
	StepWalking StepMode = "walking"
	StepTransit StepMode = "transit"
	StepOther   StepMode = "other"
)

// Step is one maneuver of a route. ReferencePoint is where the maneuver completes.
type Step struct {
	Instruction    string        `json:"instruction"`
	Distance       float64       `json:"distance_m"`
	Duration       time.Duration `json:"duration"`
	ReferencePoint types.Point   `json:"reference_point"`
	Mode           StepMode      `json:"mode"`
}

// Route is immutable once built.
type Route struct {
	ID                 types.ID      `json:"id"`
	Summary            string        `json:"summary"`
	Mode               TravelMode    `json:"mode"`
	Steps              []Step        `json:"steps"`
	Polyline           []types.Point `json:"polyline"`
	Distance           float64       `json:"distance_m"`
	ExpectedTravelTime time.Duration `json:"expected_travel_time"`
	Bounds             orb.Bound     `json:"-"`
	Warnings           []string      `json:"warnings,omitempty"`
}

// NewRoute validates and freezes a route. A non-positive distance is replaced by the step total.
func NewRoute(summary string, mode TravelMode, steps []Step, polyline []types.Point, distance float64, expected time.Duration) (*Route, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyRoute
	}
	if distance <= 0 {
		for _, s := range steps {
			distance += s.Distance
		}
	}
	if len(polyline) == 0 {
		for _, s := range steps {
			polyline = append(polyline, s.ReferencePoint)
		}
	}
	r := &Route{
		ID:                 types.ID(uuid.NewString()),
		Summary:            summary,
		Mode:               mode,
		Steps:              append([]Step(nil), steps...),
		Polyline:           append([]types.Point(nil), polyline...),
		Distance:           distance,
		ExpectedTravelTime: expected,
	}
	r.Bounds = geomath.Bounds(r.Polyline)
	return r, nil
}

// LastStep is the index of the final step.
func (r *Route) LastStep() int { return len(r.Steps) - 1 }

type Request struct {
	Origin        types.Place `json:"origin"`
	Destination   types.Place `json:"destination"`
	Mode          TravelMode  `json:"mode"`
	AvoidTolls    bool        `json:"avoid_tolls"`
	AvoidHighways bool        `json:"avoid_highways"`
}

func (r Request) Validate() error {
	if !r.Mode.IsValid() {
		return fmt.Errorf("%w: unknown travel mode %q", ErrBadRequest, r.Mode)
	}
	if !r.Origin.Point.Valid() || !r.Destination.Point.Valid() {
		return fmt.Errorf("%w: coordinates out of range", ErrBadRequest)
	}
	return nil
}

type TrafficCondition string

const (
	TrafficSmooth    TrafficCondition = "Smooth"
	TrafficSlow      TrafficCondition = "Slow"
	TrafficCongested TrafficCondition = "Congested"
)

type Result struct {
	Route        *Route           `json:"route"`
	Alternatives []*Route         `json:"alternatives"`
	Advisory     string           `json:"advisory,omitempty"`
	Traffic      TrafficCondition `json:"traffic"`
}
