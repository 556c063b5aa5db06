// README: Location service keeps the last known device fix and fans it out to observers.
package location

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"wayfarer/internal/types"
)

// SnapshotStore persists fixes so a restarted engine can resume from the last position.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id types.ID) (types.Position, error)
}

type Service struct {
	deviceID types.ID
	store    SnapshotStore
	now      func() time.Time

	mu        sync.RWMutex
	last      types.Position
	hasLast   bool
	auth      Authorization
	listeners []func(types.Position)
}

// NewService builds the service. store may be nil.
func NewService(deviceID types.ID, store SnapshotStore) *Service {
	return &Service{deviceID: deviceID, store: store, now: time.Now, auth: AuthNotDetermined}
}

// Restore seeds the last known fix from the store.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	pos, err := s.store.Load(ctx, s.deviceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if !s.hasLast {
		s.last, s.hasLast = pos, true
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) OnUpdate(fn func(types.Position)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Update records a new fix. Fixes older than the current one are rejected.
func (s *Service) Update(ctx context.Context, pos types.Position) error {
	if !pos.Point.Valid() || pos.Accuracy < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidPosition, pos.Point)
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = s.now()
	}

	s.mu.Lock()
	if s.hasLast && pos.Timestamp.Before(s.last.Timestamp) {
		s.mu.Unlock()
		return ErrStalePosition
	}
	s.last, s.hasLast = pos, true
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if s.store != nil {
		snap := Snapshot{DeviceID: s.deviceID, Position: pos, RecordedAt: s.now()}
		if err := s.store.Save(ctx, snap); err != nil {
			log.Printf("location: snapshot for %s failed: %v", s.deviceID, err)
		}
	}
	for _, fn := range listeners {
		fn(pos)
	}
	return nil
}

func (s *Service) LastKnown() (types.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasLast
}

func (s *Service) SetAuthorization(a Authorization) {
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
}

func (s *Service) Authorization() Authorization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// Follow applies every fix from positions until ctx ends or the channel closes.
func (s *Service) Follow(ctx context.Context, positions <-chan types.Position) {
	for {
		select {
		case <-ctx.Done():
			return
		case pos, ok := <-positions:
			if !ok {
				return
			}
			if err := s.Update(ctx, pos); err != nil {
				log.Printf("location: dropped fix: %v", err)
			}
		}
	}
}
