// README: Trip recorder; the navigation session logs starts and finishes, the API reads them back.
package trip

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/types"
)

type tripStore interface {
	Start(ctx context.Context, t *Trip) error
	Finish(ctx context.Context, id types.ID, outcome Outcome, at time.Time) error
	Get(ctx context.Context, id types.ID) (*Trip, error)
	Recent(ctx context.Context, limit int) ([]Trip, error)
}

const MaxRecent = 100

type Recorder struct {
	store tripStore
	now   func() time.Time
}

func NewRecorder(store tripStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

func (r *Recorder) Started(ctx context.Context, t Trip) error {
	if t.ID == "" {
		t.ID = types.ID(uuid.NewString())
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = r.now().UTC()
	}
	t.Outcome = OutcomeInProgress
	return r.store.Start(ctx, &t)
}

func (r *Recorder) Finished(ctx context.Context, id types.ID, outcome Outcome) error {
	return r.store.Finish(ctx, id, outcome, r.now().UTC())
}

func (r *Recorder) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return r.store.Get(ctx, id)
}

// Recent lists the newest trips first; limit is clamped to [1, MaxRecent].
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Trip, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}
	trips, err := r.store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []Trip{}
	}
	return trips, nil
}
