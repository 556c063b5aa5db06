// README: Route request coordinator; retries transport failures, discards stale results, tracks alternates.
package routing

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/types"
)

// HistoryRecorder is notified after a destination has been routed to.
type HistoryRecorder interface {
	Add(ctx context.Context, p types.Place) error
}

type Coordinator struct {
	provider Provider
	history  HistoryRecorder
	cfg      config.RoutingConfig
	sleep    func(ctx context.Context, d time.Duration) error

	mu           sync.Mutex
	generation   uint64
	cancelFlight context.CancelFunc
	request      *Request
	active       *Route
	alternatives []*Route
	advisory     string
}

func NewCoordinator(provider Provider, history HistoryRecorder, cfg config.RoutingConfig) *Coordinator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Coordinator{
		provider: provider,
		history:  history,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Request computes routes for req. Starting a new request supersedes any in-flight one;
// a superseded call returns ErrSuperseded and leaves state untouched.
func (c *Coordinator) Request(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancelFlight != nil {
		c.cancelFlight()
	}
	flightCtx, cancel := context.WithCancel(ctx)
	c.cancelFlight = cancel
	c.mu.Unlock()
	defer cancel()

	routes, err := c.fetch(flightCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil, ErrSuperseded
	}
	c.cancelFlight = nil
	if err != nil {
		return nil, err
	}

	c.request = &req
	c.active = routes[0]
	c.alternatives = append([]*Route(nil), routes[1:]...)
	c.advisory = Advisory(req.Mode, c.active)
	if c.advisory != "" {
		log.Printf("routing: transit requested to %q but no transit leg returned", req.Destination.Name)
	}
	c.notifyHistory(req.Destination)
	return c.resultLocked(), nil
}

func (c *Coordinator) fetch(ctx context.Context, req Request) ([]*Route, error) {
	var last error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if c.cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		}
		routes, err := c.provider.ComputeRoutes(attemptCtx, req)
		cancel()
		if err == nil {
			if len(routes) == 0 {
				return nil, ErrNoRoute
			}
			return routes, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		last = err
		log.Printf("routing: attempt %d/%d failed: %v", attempt, c.cfg.Attempts, err)
		if attempt < c.cfg.Attempts {
			if err := c.sleep(ctx, c.cfg.Backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, &TransportError{Attempts: c.cfg.Attempts, Err: last}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNoRoute), errors.Is(err, ErrRejected), errors.Is(err, ErrBadRequest):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func (c *Coordinator) notifyHistory(dest types.Place) {
	if c.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.history.Add(ctx, dest); err != nil {
			log.Printf("routing: add %q to history: %v", dest.Name, err)
		}
	}()
}

// SelectAlternative promotes an alternate route; the previous active route goes to the front of the alternates.
func (c *Coordinator) SelectAlternative(id types.ID) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := -1
	for i, r := range c.alternatives {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownRoute
	}
	chosen := c.alternatives[idx]
	rest := make([]*Route, 0, len(c.alternatives))
	if c.active != nil {
		rest = append(rest, c.active)
	}
	rest = append(rest, c.alternatives[:idx]...)
	rest = append(rest, c.alternatives[idx+1:]...)
	c.active = chosen
	c.alternatives = rest
	if c.request != nil {
		c.advisory = Advisory(c.request.Mode, chosen)
	}
	return c.resultLocked(), nil
}

// Clear drops the active route, alternates and advisory, and supersedes any in-flight request.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.cancelFlight != nil {
		c.cancelFlight()
		c.cancelFlight = nil
	}
	c.request = nil
	c.active = nil
	c.alternatives = nil
	c.advisory = ""
}

func (c *Coordinator) Active() *Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) Alternatives() []*Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Route(nil), c.alternatives...)
}

func (c *Coordinator) Advisory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advisory
}

// Destination is the place the active route was requested for.
func (c *Coordinator) Destination() (types.Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request == nil {
		return types.Place{}, false
	}
	return c.request.Destination, true
}

// Current returns the applied result, or ErrNoActiveRoute.
func (c *Coordinator) Current() (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, ErrNoActiveRoute
	}
	return c.resultLocked(), nil
}

func (c *Coordinator) resultLocked() *Result {
	return &Result{
		Route:        c.active,
		Alternatives: append([]*Route(nil), c.alternatives...),
		Advisory:     c.advisory,
		Traffic:      Traffic(c.active),
	}
}

// UserMessage renders a request error as short text for the user.
func UserMessage(err error, mode TravelMode) string {
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoRoute) && mode == ModeTransit:
		return "No public transport routes available in this area"
	case errors.Is(err, ErrNoRoute):
		return "No available route found"
	case errors.As(err, &te) && mode == ModeTransit:
		return "No public transport routes available in this area. Try walking or driving instead."
	case errors.As(err, &te):
		return "Route calculation failed: " + te.Err.Error()
	case errors.Is(err, ErrBadRequest):
		return "Invalid route request"
	}
	return "Cannot get route information"
}
