package trip

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/types"
)

// mockTripStore is an in-memory tripStore.
type mockTripStore struct {
	mu    sync.Mutex
	trips map[types.ID]*Trip
}

func newMockTripStore() *mockTripStore {
	return &mockTripStore{trips: make(map[types.ID]*Trip)}
}

func (m *mockTripStore) Start(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

func (m *mockTripStore) Finish(_ context.Context, id types.ID, outcome Outcome, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok || t.FinishedAt != nil {
		return ErrNotFound
	}
	t.Outcome = outcome
	t.FinishedAt = &at
	return nil
}

func (m *mockTripStore) Get(_ context.Context, id types.ID) (*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTripStore) Recent(_ context.Context, limit int) ([]Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Trip
	for _, t := range m.trips {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestRecorder_StartAndFinish(t *testing.T) {
	store := newMockTripStore()
	rec := NewRecorder(store)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, rec.Started(ctx, Trip{ID: "trip-1", Mode: "drive"}))
	got := store.trips["trip-1"]
	require.NotNil(t, got)
	assert.Equal(t, OutcomeInProgress, got.Outcome)
	assert.Equal(t, fixed, got.StartedAt)

	require.NoError(t, rec.Finished(ctx, "trip-1", OutcomeArrived))
	assert.Equal(t, OutcomeArrived, store.trips["trip-1"].Outcome)
	assert.ErrorIs(t, rec.Finished(ctx, "trip-1", OutcomeStopped), ErrNotFound)
}

func TestRecorder_AssignsID(t *testing.T) {
	store := newMockTripStore()
	rec := NewRecorder(store)
	require.NoError(t, rec.Started(context.Background(), Trip{Mode: "walk"}))
	require.Len(t, store.trips, 1)
	for id := range store.trips {
		_, err := uuid.Parse(string(id))
		assert.NoError(t, err)
	}
}

func TestRecorder_ReadBack(t *testing.T) {
	store := newMockTripStore()
	rec := NewRecorder(store)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	empty, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i, id := range []types.ID{"trip-1", "trip-2", "trip-3"} {
		rec.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		require.NoError(t, rec.Started(ctx, Trip{ID: id, Mode: "walk"}))
	}

	got, err := rec.Get(ctx, "trip-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInProgress, got.Outcome)
	_, err = rec.Get(ctx, "trip-9")
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := rec.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, types.ID("trip-3"), recent[0].ID)
	assert.Equal(t, types.ID("trip-2"), recent[1].ID)

	recent, err = rec.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1, "limit is clamped to at least one")
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("WAYFARER_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYFARER_TEST_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	schema, err := os.ReadFile("../../../migrations/0001_trips.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	store := NewStore(pool)
	id := types.ID(uuid.NewString())
	started := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.Start(ctx, &Trip{
		ID:               id,
		SessionID:        types.ID(uuid.NewString()),
		Mode:             "drive",
		Origin:           types.Place{Name: "My Location", Point: types.Point{Lat: 25.03, Lng: 121.56}},
		Destination:      types.Place{Name: "Taipei Main Station", Point: types.Point{Lat: 25.047, Lng: 121.517}},
		DistanceMeters:   5200,
		ExpectedDuration: 14 * time.Minute,
		StartedAt:        started,
	}))

	require.NoError(t, store.Finish(ctx, id, OutcomeArrived, started.Add(15*time.Minute)))
	assert.ErrorIs(t, store.Finish(ctx, id, OutcomeStopped, started.Add(16*time.Minute)), ErrNotFound)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeArrived, got.Outcome)
	assert.Equal(t, 14*time.Minute, got.ExpectedDuration)
	require.NotNil(t, got.FinishedAt)

	_, err = store.Get(ctx, types.ID(uuid.NewString()))
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}
