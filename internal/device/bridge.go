// README: Bridge is the HTTP-fed device; the client pushes fixes and compass readings and the engine consumes them as providers.
package device

import (
	"context"
	"log"
	"sync"
	"time"

	"wayfarer/internal/modules/heading"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

const bridgeBuffer = 32

type Bridge struct {
	now func() time.Time

	mu         sync.Mutex
	auth       location.Authorization
	locationOn bool
	headingOn  bool
	last       types.Position
	hasLast    bool
	waiters    []chan types.Position

	positions chan types.Position
	samples   chan heading.Sample
}

var (
	_ LocationProvider = (*Bridge)(nil)
	_ HeadingProvider  = (*Bridge)(nil)
)

func NewBridge() *Bridge {
	return &Bridge{
		now:       time.Now,
		auth:      location.AuthNotDetermined,
		positions: make(chan types.Position, bridgeBuffer),
		samples:   make(chan heading.Sample, bridgeBuffer),
	}
}

// RequestPermission reports the authorisation the client last pushed.
func (b *Bridge) RequestPermission(ctx context.Context) (location.Authorization, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.auth == location.AuthDenied {
		return b.auth, ErrPermissionDenied
	}
	return b.auth, nil
}

func (b *Bridge) SetAuthorization(a location.Authorization) {
	b.mu.Lock()
	b.auth = a
	if a == location.AuthDenied {
		b.locationOn = false
	}
	b.mu.Unlock()
}

func (b *Bridge) Authorization() location.Authorization {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth
}

func (b *Bridge) StartUpdates() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.auth == location.AuthDenied {
		return ErrPermissionDenied
	}
	b.locationOn = true
	return nil
}

func (b *Bridge) StopUpdates() {
	b.mu.Lock()
	b.locationOn = false
	b.mu.Unlock()
}

func (b *Bridge) Positions() <-chan types.Position { return b.positions }

// RequestOneShot returns the latest pushed fix, or waits for the next one.
func (b *Bridge) RequestOneShot(ctx context.Context) (types.Position, error) {
	b.mu.Lock()
	if b.auth == location.AuthDenied {
		b.mu.Unlock()
		return types.Position{}, ErrPermissionDenied
	}
	if b.hasLast {
		pos := b.last
		b.mu.Unlock()
		return pos, nil
	}
	w := make(chan types.Position, 1)
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()

	select {
	case pos := <-w:
		return pos, nil
	case <-ctx.Done():
		return types.Position{}, ctx.Err()
	}
}

// PushLocation accepts a fix from the client. It is forwarded only while updates are
// started; one-shot waiters are always served.
func (b *Bridge) PushLocation(pos types.Position) error {
	if pos.Timestamp.IsZero() {
		pos.Timestamp = b.now()
	}
	b.mu.Lock()
	b.last, b.hasLast = pos, true
	waiters := b.waiters
	b.waiters = nil
	on := b.locationOn
	b.mu.Unlock()

	for _, w := range waiters {
		w <- pos
	}
	if !on {
		return ErrNotStarted
	}
	select {
	case b.positions <- pos:
	default:
		log.Printf("device: position buffer full, dropping fix at %s", pos.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func (b *Bridge) Start() error {
	b.mu.Lock()
	b.headingOn = true
	b.mu.Unlock()
	return nil
}

func (b *Bridge) Stop() {
	b.mu.Lock()
	b.headingOn = false
	b.mu.Unlock()
}

func (b *Bridge) Samples() <-chan heading.Sample { return b.samples }

// PushHeading accepts a compass reading. Readings outside Start/Stop are dropped.
func (b *Bridge) PushHeading(s heading.Sample) error {
	if s.Timestamp.IsZero() {
		s.Timestamp = b.now()
	}
	b.mu.Lock()
	on := b.headingOn
	b.mu.Unlock()
	if !on {
		return ErrNotStarted
	}
	select {
	case b.samples <- s:
	default:
		log.Printf("device: heading buffer full, dropping sample")
	}
	return nil
}
