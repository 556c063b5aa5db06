// README: Navigation session; idle/active state machine that ticks progress then camera on the coordinator queue.
package navigation

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/config"
	"wayfarer/internal/dispatch"
	"wayfarer/internal/modules/camera"
	"wayfarer/internal/modules/progress"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/modules/trip"
	"wayfarer/internal/types"
)

type RouteSource interface {
	Active() *routing.Route
	Destination() (types.Place, bool)
}

type PositionSource interface {
	LastKnown() (types.Position, bool)
}

type Camera interface {
	Mode() camera.Mode
	SetRoute(r *routing.Route)
	ToggleFirstPerson(pos types.Point, havePos bool) camera.Mode
	StartAutoTracking(pos types.Point)
	StopAutoTracking()
	Tick(pos types.Point) bool
}

type HeadingTracker interface {
	Enabled() bool
	Enable() error
}

type TripRecorder interface {
	Started(ctx context.Context, t trip.Trip) error
	Finished(ctx context.Context, id types.ID, outcome trip.Outcome) error
}

type Deps struct {
	Scheduler dispatch.Scheduler
	Routes    RouteSource
	Positions PositionSource
	Camera    Camera
	Heading   HeadingTracker
	Trips     TripRecorder
	Now       func() time.Time
}

// Session must only be driven from the coordinator goroutine that runs Deps.Scheduler.
type Session struct {
	cfg       config.NavigationConfig
	sched     dispatch.Scheduler
	routes    RouteSource
	positions PositionSource
	camera    Camera
	heading   HeadingTracker
	trips     TripRecorder
	now       func() time.Time
	tracker   *progress.Tracker

	state     State
	guidance  Guidance
	tripID    types.ID
	arrived   bool
	listeners []func(Guidance)

	tripDone      chan struct{}
	cancelTick    func()
	cancelEntry   func()
	cancelArrival func()
}

func NewSession(cfg config.NavigationConfig, deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		cfg:       cfg,
		sched:     deps.Scheduler,
		routes:    deps.Routes,
		positions: deps.Positions,
		camera:    deps.Camera,
		heading:   deps.Heading,
		trips:     deps.Trips,
		now:       now,
		tracker:   progress.NewTracker(cfg.ArrivalRadiusMeters),
		state:     StateIdle,
		guidance:  Guidance{State: StateIdle},
	}
}

func (s *Session) State() State { return s.state }

// Guidance returns a copy of the current guidance.
func (s *Session) Guidance() Guidance { return s.guidance }

// OnGuidance registers an observer called after every guidance change.
func (s *Session) OnGuidance(fn func(Guidance)) { s.listeners = append(s.listeners, fn) }

// Start begins navigating the active route. It is a no-op when already active or when
// there is no route. A nil origin means the current device location.
func (s *Session) Start(origin *types.Place) bool {
	if s.state == StateActive {
		return false
	}
	route := s.routes.Active()
	if route == nil {
		log.Printf("navigation: start ignored, no active route")
		return false
	}
	pos, havePos := s.positions.LastKnown()
	if origin == nil {
		o := types.Place{Name: MyLocationName}
		if havePos {
			o.Point = pos.Point
		}
		origin = &o
	}

	s.state = StateActive
	s.arrived = false
	s.tracker.Reset(route)
	s.camera.SetRoute(route)
	s.guidance = Guidance{
		State:     StateActive,
		SessionID: types.ID(uuid.NewString()),
		Origin:    origin,
		StepCount: len(route.Steps),
	}
	if dest, ok := s.routes.Destination(); ok {
		s.guidance.Destination = &dest
	}
	s.applyUpdate(s.tracker.Last())
	s.refreshInstructions()

	if !s.heading.Enabled() {
		if err := s.heading.Enable(); err != nil {
			log.Printf("navigation: heading tracking unavailable: %v", err)
		}
	}
	if s.camera.Mode() != camera.FirstPerson {
		s.camera.ToggleFirstPerson(pos.Point, havePos)
	}
	entry := origin.Point
	if len(route.Polyline) > 0 && !havePos {
		entry = route.Polyline[0]
	}
	s.cancelEntry = s.sched.After(s.cfg.CameraEntryDelay, func() {
		s.cancelEntry = nil
		if s.state != StateActive {
			return
		}
		at := entry
		if p, ok := s.positions.LastKnown(); ok {
			at = p.Point
		}
		s.camera.StartAutoTracking(at)
	})
	s.cancelTick = s.sched.Every(s.cfg.TickInterval, s.tick)

	s.recordStart(route, *origin)
	s.publish()
	return true
}

// Stop ends the session. Heading tracking keeps running.
func (s *Session) Stop() bool {
	if s.state != StateActive {
		return false
	}
	s.cancelTimers()
	s.camera.StopAutoTracking()
	outcome := trip.OutcomeStopped
	if s.arrived {
		outcome = trip.OutcomeArrived
	}
	s.recordFinish(outcome)
	s.state = StateIdle
	s.arrived = false
	s.tracker.Reset(nil)
	s.guidance = Guidance{State: StateIdle}
	s.publish()
	return true
}

func (s *Session) cancelTimers() {
	for _, c := range []*func(){&s.cancelTick, &s.cancelEntry, &s.cancelArrival} {
		if *c != nil {
			(*c)()
			*c = nil
		}
	}
}

// tick runs every TickInterval: progress first, camera second.
func (s *Session) tick() {
	if s.state != StateActive || s.arrived {
		return
	}
	pos, ok := s.positions.LastKnown()
	if !ok {
		return
	}

	active := s.routes.Active()
	if active == nil {
		log.Printf("navigation: route cleared during session %s", s.guidance.SessionID)
		s.Stop()
		return
	}
	if active != s.tracker.Route() {
		log.Printf("navigation: route swapped to %s", active.ID)
		s.tracker.Reset(active)
		s.camera.SetRoute(active)
		s.guidance.StepCount = len(active.Steps)
		s.refreshInstructions()
	}

	upd, ev := s.tracker.Advance(pos.Point)
	s.applyUpdate(upd)
	switch ev {
	case progress.EventRouteCompleted:
		s.arrive()
		s.publish()
		return
	case progress.EventStepAdvanced:
		s.refreshInstructions()
	}
	s.camera.Tick(pos.Point)
	s.publish()
}

func (s *Session) arrive() {
	s.arrived = true
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	s.guidance.CurrentInstruction = TextArrived
	s.guidance.NextInstruction = ""
	s.guidance.ArrivalMessage = TextArrived
	s.cancelArrival = s.sched.After(s.cfg.ArrivalMessageDelay, func() {
		s.cancelArrival = nil
		s.Stop()
	})
}

func (s *Session) applyUpdate(u progress.Update) {
	s.guidance.StepIndex = u.StepIndex
	s.guidance.DistanceToNextManeuver = u.DistanceToNextManeuver
	s.guidance.RemainingDistance = u.RemainingDistance
	s.guidance.RemainingTime = u.RemainingTime
	s.guidance.EstimatedArrival = s.now().Add(u.RemainingTime)
}

func (s *Session) refreshInstructions() {
	r := s.tracker.Route()
	idx := s.tracker.StepIndex()
	if r == nil || idx > r.LastStep() {
		return
	}
	s.guidance.CurrentInstruction = instructionAt(r, idx)
	if idx < r.LastStep() {
		s.guidance.NextInstruction = instructionAt(r, idx+1)
	} else {
		s.guidance.NextInstruction = TextApproaching
	}
}

func instructionAt(r *routing.Route, idx int) string {
	if text := r.Steps[idx].Instruction; text != "" {
		return text
	}
	switch idx {
	case r.LastStep():
		return TextApproaching
	case 0:
		return TextStart
	}
	return TextContinue
}

func (s *Session) publish() {
	s.guidance.Prompt = ""
	if d := s.guidance.DistanceToNextManeuver; s.state == StateActive && !s.arrived && d > 0 && d < promptDistance {
		s.guidance.Prompt = fmt.Sprintf("In %d m, %s", int(math.Round(d)), s.guidance.NextInstruction)
	}
	g := s.guidance
	for _, fn := range s.listeners {
		fn(g)
	}
}

func (s *Session) recordStart(r *routing.Route, origin types.Place) {
	if s.trips == nil {
		return
	}
	s.tripID = types.ID(uuid.NewString())
	t := trip.Trip{
		ID:               s.tripID,
		SessionID:        s.guidance.SessionID,
		Mode:             string(r.Mode),
		Origin:           origin,
		DistanceMeters:   r.Distance,
		ExpectedDuration: r.ExpectedTravelTime,
		StartedAt:        s.now().UTC(),
	}
	if s.guidance.Destination != nil {
		t.Destination = *s.guidance.Destination
	}
	s.logTrip("start", func(ctx context.Context) error { return s.trips.Started(ctx, t) })
}

func (s *Session) recordFinish(outcome trip.Outcome) {
	if s.trips == nil || s.tripID == "" {
		return
	}
	id := s.tripID
	s.tripID = ""
	s.logTrip("finish", func(ctx context.Context) error { return s.trips.Finished(ctx, id, outcome) })
}

// logTrip writes to the trip log off the coordinator goroutine, keeping writes in order.
func (s *Session) logTrip(what string, write func(ctx context.Context) error) {
	prev := s.tripDone
	done := make(chan struct{})
	s.tripDone = done
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := write(ctx); err != nil {
			log.Printf("navigation: trip %s: %v", what, err)
		}
	}()
}
