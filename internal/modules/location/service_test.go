package location

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/types"
)

func newRedisStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb)
}

func TestUpdate_StoresAndNotifies(t *testing.T) {
	store := newRedisStore(t)
	svc := NewService("phone-1", store)
	var seen []types.Position
	svc.OnUpdate(func(p types.Position) { seen = append(seen, p) })

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	pos := types.Position{Point: types.Point{Lat: 40.7128, Lng: -74.0060}, Accuracy: 5, Timestamp: ts}
	require.NoError(t, svc.Update(context.Background(), pos))

	last, ok := svc.LastKnown()
	require.True(t, ok)
	assert.Equal(t, pos, last)
	require.Len(t, seen, 1)

	got, err := store.Load(context.Background(), "phone-1")
	require.NoError(t, err)
	assert.InDelta(t, 40.7128, got.Lat, 1e-4)
	assert.InDelta(t, -74.0060, got.Lng, 1e-4)
	assert.Equal(t, 5.0, got.Accuracy)
	assert.True(t, ts.Equal(got.Timestamp))
}

func TestUpdate_RejectsInvalidAndStale(t *testing.T) {
	svc := NewService("phone-1", nil)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	err := svc.Update(ctx, types.Position{Point: types.Point{Lat: 91}, Timestamp: ts})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	require.NoError(t, svc.Update(ctx, types.Position{Point: types.Point{Lat: 1}, Timestamp: ts}))
	err = svc.Update(ctx, types.Position{Point: types.Point{Lat: 2}, Timestamp: ts.Add(-time.Second)})
	assert.ErrorIs(t, err, ErrStalePosition)

	last, _ := svc.LastKnown()
	assert.Equal(t, 1.0, last.Lat)
}

func TestUpdate_ZeroTimestampUsesClock(t *testing.T) {
	svc := NewService("phone-1", nil)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	require.NoError(t, svc.Update(context.Background(), types.Position{Point: types.Point{Lat: 1}}))
	last, _ := svc.LastKnown()
	assert.Equal(t, fixed, last.Timestamp)
}

func TestRestore(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, Snapshot{
		DeviceID: "phone-2",
		Position: types.Position{Point: types.Point{Lat: 48.85, Lng: 2.35}, Timestamp: time.UnixMilli(1_700_000_000_000)},
	}))

	svc := NewService("phone-2", store)
	require.NoError(t, svc.Restore(ctx))
	last, ok := svc.LastKnown()
	require.True(t, ok)
	assert.InDelta(t, 48.85, last.Lat, 1e-4)

	missing := NewService("ghost", store)
	assert.ErrorIs(t, missing.Restore(ctx), ErrNotFound)
}

func TestAuthorization(t *testing.T) {
	svc := NewService("phone-1", nil)
	assert.Equal(t, AuthNotDetermined, svc.Authorization())
	assert.False(t, svc.Authorization().Granted())
	svc.SetAuthorization(AuthWhenInUse)
	assert.True(t, svc.Authorization().Granted())
}

func TestFollow_AppliesUntilClosed(t *testing.T) {
	svc := NewService("phone-1", nil)
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ch := make(chan types.Position, 3)
	ch <- types.Position{Point: types.Point{Lat: 1}, Timestamp: ts}
	ch <- types.Position{Point: types.Point{Lat: 95}, Timestamp: ts.Add(time.Second)}
	ch <- types.Position{Point: types.Point{Lat: 2}, Timestamp: ts.Add(2 * time.Second)}
	close(ch)

	svc.Follow(context.Background(), ch)
	last, ok := svc.LastKnown()
	require.True(t, ok)
	assert.Equal(t, 2.0, last.Lat)
}
