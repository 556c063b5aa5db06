// README: Route progress tracker; advances the current step from live positions and derives remaining distance/time.
package progress

import (
	"time"

	"wayfarer/internal/geomath"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/types"
)

const DefaultArrivalRadius = 50.0

type Event int

const (
	EventNone Event = iota
	EventStepAdvanced
	EventRouteCompleted
)

func (e Event) String() string {
	switch e {
	case EventStepAdvanced:
		return "step_advanced"
	case EventRouteCompleted:
		return "route_completed"
	}
	return "none"
}

// Update is the derived progress after one Advance call.
type Update struct {
	StepIndex              int
	PreviousStepIndex      int
	DistanceToNextManeuver float64
	RemainingDistance      float64
	RemainingTime          time.Duration
}

// Tracker is owned by the navigation coordinator and is not safe for concurrent use.
type Tracker struct {
	radius   float64
	route    *routing.Route
	index    int
	finished bool
	last     Update
}

func NewTracker(arrivalRadius float64) *Tracker {
	if arrivalRadius <= 0 {
		arrivalRadius = DefaultArrivalRadius
	}
	return &Tracker{radius: arrivalRadius}
}

// Reset starts tracking a new route from its first step. A nil route clears the tracker.
func (t *Tracker) Reset(r *routing.Route) {
	t.route = r
	t.index = 0
	t.finished = false
	t.last = Update{}
	if r != nil {
		t.last = t.derive(0, 0, 0)
	}
}

func (t *Tracker) Route() *routing.Route { return t.route }
func (t *Tracker) StepIndex() int        { return t.index }
func (t *Tracker) Finished() bool        { return t.finished }
func (t *Tracker) Last() Update          { return t.last }

// Advance consumes a position. Several steps may be completed by one position.
// RouteCompleted is reported exactly once; later calls return the final update with EventNone.
func (t *Tracker) Advance(pos types.Point) (Update, Event) {
	if t.route == nil || t.finished {
		return t.last, EventNone
	}
	steps := t.route.Steps
	prev := t.index
	dist := geomath.Distance(pos, steps[t.index].ReferencePoint)
	for dist < t.radius {
		t.index++
		if t.index >= len(steps) {
			t.index = len(steps)
			t.finished = true
			t.last = t.derive(prev, t.index, 0)
			return t.last, EventRouteCompleted
		}
		dist = geomath.Distance(pos, steps[t.index].ReferencePoint)
	}
	t.last = t.derive(prev, t.index, dist)
	if t.index != prev {
		return t.last, EventStepAdvanced
	}
	return t.last, EventNone
}

func (t *Tracker) derive(prev, index int, toManeuver float64) Update {
	var completed, remaining float64
	for i, s := range t.route.Steps {
		if i < index {
			completed += s.Distance
		} else {
			remaining += s.Distance
		}
	}
	return Update{
		StepIndex:              index,
		PreviousStepIndex:      prev,
		DistanceToNextManeuver: toManeuver,
		RemainingDistance:      remaining,
		RemainingTime:          RemainingTime(t.route, completed),
	}
}

// RemainingTime scales the route's expected travel time by the share of distance not yet completed.
func RemainingTime(r *routing.Route, completed float64) time.Duration {
	if r.Distance <= 0 {
		return r.ExpectedTravelTime
	}
	share := 1 - completed/r.Distance
	if share < 0 {
		share = 0
	}
	return time.Duration(r.ExpectedTravelTime.Seconds() * share * float64(time.Second))
}
