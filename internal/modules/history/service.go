// README: History service; fills in missing addresses and records chosen destinations.
package history

import (
	"context"
	"log"
	"time"

	"wayfarer/internal/types"
)

type Geocoder interface {
	Address(ctx context.Context, p types.Point) (string, error)
}

type Store interface {
	Push(ctx context.Context, e Entry) error
	Recent(ctx context.Context, n int) ([]Entry, error)
}

type Service struct {
	store    Store
	geocoder Geocoder
	now      func() time.Time
}

// NewService builds the service; geocoder may be nil.
func NewService(store Store, geocoder Geocoder) *Service {
	return &Service{store: store, geocoder: geocoder, now: time.Now}
}

// Add records a destination. A failed address lookup does not prevent recording it.
func (s *Service) Add(ctx context.Context, p types.Place) error {
	if p.Address == "" && s.geocoder != nil {
		addr, err := s.geocoder.Address(ctx, p.Point)
		if err != nil {
			log.Printf("history: reverse geocode %q: %v", p.Name, err)
		} else {
			p.Address = addr
		}
	}
	if p.Name == "" {
		p.Name = p.Address
	}
	return s.store.Push(ctx, Entry{Place: p, AddedAt: s.now().UTC()})
}

func (s *Service) Recent(ctx context.Context, n int) ([]Entry, error) {
	return s.store.Recent(ctx, n)
}
