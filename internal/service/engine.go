// README: Engine wires the navigation modules around one coordinator queue and exposes them to the transport layer.
package service

import (
	"context"
	"errors"
	"log"

	"wayfarer/internal/config"
	"wayfarer/internal/device"
	"wayfarer/internal/dispatch"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/camera"
	"wayfarer/internal/modules/heading"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/navigation"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/modules/trip"
	"wayfarer/internal/types"
)

var ErrNoPosition = errors.New("no device position yet")

// Deps are the engine's collaborators. History, Trips and Positions are optional.
type Deps struct {
	Config    config.Config
	DeviceID  types.ID
	Provider  routing.Provider
	History   *history.Service
	Trips     *trip.Recorder
	Positions location.SnapshotStore
}

type Engine struct {
	queue    *dispatch.Queue
	bridge   *device.Bridge
	surface  *mapview.Surface
	camera   *camera.Controller
	sampler  *heading.Sampler
	location *location.Service
	routes   *routing.Coordinator
	session  *navigation.Session
	history  *history.Service
}

// Status is the navigation state the client polls.
type Status struct {
	Guidance       navigation.Guidance `json:"guidance"`
	Camera         camera.State        `json:"camera"`
	HeadingEnabled bool                `json:"heading_enabled"`
	Heading        *heading.Stable     `json:"heading,omitempty"`
}

func NewEngine(deps Deps) *Engine {
	cfg := deps.Config
	e := &Engine{
		queue:   dispatch.NewQueue(256),
		bridge:  device.NewBridge(),
		surface: mapview.New(camera.Pose{Distance: cfg.Camera.OverviewDistance}),
		history: deps.History,
	}
	e.location = location.NewService(deps.DeviceID, deps.Positions)
	e.camera = camera.NewController(e.surface, cfg.Camera, nil)
	e.sampler = heading.NewSampler(cfg.Heading, e.location, e.camera, e.bridge)

	var recorder routing.HistoryRecorder
	if deps.History != nil {
		recorder = deps.History
	}
	e.routes = routing.NewCoordinator(deps.Provider, recorder, cfg.Routing)

	navDeps := navigation.Deps{
		Scheduler: e.queue,
		Routes:    e.routes,
		Positions: e.location,
		Camera:    e.camera,
		Heading:   e.sampler,
	}
	if deps.Trips != nil {
		navDeps.Trips = deps.Trips
	}
	e.session = navigation.NewSession(cfg.Navigation, navDeps)

	e.surface.OnRegionWillChange(func() {
		if e.camera.DetectManualMove() {
			log.Printf("camera: auto-tracking suspended by user gesture")
		}
	})
	e.location.OnUpdate(func(p types.Position) {
		e.queue.Post(func() { e.sampler.PositionChanged(p.Point) })
	})
	if err := e.bridge.StartUpdates(); err != nil {
		log.Printf("engine: location updates: %v", err)
	}
	e.session.OnGuidance(func(g navigation.Guidance) {
		if g.ArrivalMessage != "" {
			log.Printf("navigation: session %s arrived", g.SessionID)
		}
	})
	return e
}

// Run owns the coordinator goroutine until ctx ends.
func (e *Engine) Run(ctx context.Context) {
	if err := e.location.Restore(ctx); err != nil && !errors.Is(err, location.ErrNotFound) {
		log.Printf("engine: restore last position: %v", err)
	}
	go e.location.Follow(ctx, e.bridge.Positions())
	go e.sampler.Run(ctx, e.bridge.Samples(), e.queue.Post)
	e.queue.Run(ctx)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

// RequestRoute runs on the caller's goroutine; only the camera update is marshalled onto the queue.
func (e *Engine) RequestRoute(ctx context.Context, req routing.Request) (*routing.Result, error) {
	res, err := e.routes.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.queue.Do(ctx, e.showActiveRoute); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) SelectRoute(ctx context.Context, id types.ID) (*routing.Result, error) {
	res, err := e.routes.SelectAlternative(id)
	if err != nil {
		return nil, err
	}
	if err := e.queue.Do(ctx, e.showActiveRoute); err != nil {
		return nil, err
	}
	return res, nil
}

// ClearRoute drops every route and ends a running session.
func (e *Engine) ClearRoute(ctx context.Context) error {
	e.routes.Clear()
	return e.queue.Do(ctx, func() {
		e.session.Stop()
		e.camera.SetRoute(nil)
	})
}

func (e *Engine) Routes() (*routing.Result, error) { return e.routes.Current() }

// showActiveRoute frames whatever route is active when the task runs, so a result that
// was superseded while queued never draws over the newer one. During a session the tick
// picks the route up.
func (e *Engine) showActiveRoute() {
	r := e.routes.Active()
	if r == nil || e.session.State() == navigation.StateActive {
		return
	}
	e.camera.SetRoute(r)
	pos, ok := e.location.LastKnown()
	e.camera.Recenter(pos.Point, ok)
}

// ---------------------------------------------------------------------------
// Navigation and camera
// ---------------------------------------------------------------------------

func (e *Engine) StartNavigation(ctx context.Context, origin *types.Place) (started bool, st Status, err error) {
	err = e.queue.Do(ctx, func() {
		started = e.session.Start(origin)
		st = e.status()
	})
	return started, st, err
}

func (e *Engine) StopNavigation(ctx context.Context) (stopped bool, st Status, err error) {
	err = e.queue.Do(ctx, func() {
		stopped = e.session.Stop()
		st = e.status()
	})
	return stopped, st, err
}

func (e *Engine) Status(ctx context.Context) (st Status, err error) {
	err = e.queue.Do(ctx, func() { st = e.status() })
	return st, err
}

func (e *Engine) status() Status {
	st := Status{
		Guidance:       e.session.Guidance(),
		Camera:         e.camera.State(),
		HeadingEnabled: e.sampler.Enabled(),
	}
	if h, ok := e.sampler.Current(); ok {
		st.Heading = &h
	}
	return st
}

func (e *Engine) Recenter(ctx context.Context) (st camera.State, err error) {
	err = e.queue.Do(ctx, func() {
		pos, ok := e.location.LastKnown()
		e.camera.Recenter(pos.Point, ok)
		st = e.camera.State()
	})
	return st, err
}

// ToggleView switches between first-person and overview framing.
func (e *Engine) ToggleView(ctx context.Context) (st camera.State, err error) {
	err = e.queue.Do(ctx, func() {
		pos, ok := e.location.LastKnown()
		e.camera.ToggleFirstPerson(pos.Point, ok)
		st = e.camera.State()
	})
	return st, err
}

func (e *Engine) AlignWithRoute(ctx context.Context) (st camera.State, err error) {
	qerr := e.queue.Do(ctx, func() {
		pos, ok := e.location.LastKnown()
		if !ok {
			err = ErrNoPosition
			return
		}
		e.camera.AlignWithRoute(pos.Point)
		st = e.camera.State()
	})
	if qerr != nil {
		return st, qerr
	}
	return st, err
}

// RegionWillChange reports a user gesture on the client map.
func (e *Engine) RegionWillChange(ctx context.Context) (st camera.State, err error) {
	err = e.queue.Do(ctx, func() {
		e.surface.NotifyRegionWillChange()
		st = e.camera.State()
	})
	return st, err
}

// ---------------------------------------------------------------------------
// Map surface
// ---------------------------------------------------------------------------

func (e *Engine) Map() mapview.Snapshot          { return e.surface.Snapshot() }
func (e *Engine) SetViewport(v mapview.Viewport) { e.surface.SetViewport(v) }
func (e *Engine) Viewport() mapview.Viewport     { return e.surface.Viewport() }
func (e *Engine) ScreenToCoordinate(p mapview.ScreenPoint) types.Point {
	return e.surface.PointToCoordinate(p)
}
func (e *Engine) CoordinateToScreen(p types.Point) (mapview.ScreenPoint, bool) {
	return e.surface.CoordinateToPoint(p)
}

// ---------------------------------------------------------------------------
// Device ingest and heading
// ---------------------------------------------------------------------------

func (e *Engine) PushLocation(pos types.Position) error {
	if !pos.Point.Valid() {
		return location.ErrInvalidPosition
	}
	return e.bridge.PushLocation(pos)
}

func (e *Engine) SetAuthorization(a location.Authorization) {
	e.bridge.SetAuthorization(a)
	e.location.SetAuthorization(a)
	if a.Granted() {
		if err := e.bridge.StartUpdates(); err != nil {
			log.Printf("engine: location updates: %v", err)
		}
	}
}

func (e *Engine) PushHeading(s heading.Sample) error { return e.bridge.PushHeading(s) }

func (e *Engine) LastKnown() (types.Position, bool) { return e.location.LastKnown() }

func (e *Engine) EnableHeading(ctx context.Context) error {
	var err error
	if qerr := e.queue.Do(ctx, func() { err = e.sampler.Enable() }); qerr != nil {
		return qerr
	}
	return err
}

func (e *Engine) DisableHeading(ctx context.Context) error {
	return e.queue.Do(ctx, e.sampler.Disable)
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func (e *Engine) History(ctx context.Context, n int) ([]history.Entry, error) {
	if e.history == nil {
		return []history.Entry{}, nil
	}
	return e.history.Recent(ctx, n)
}
