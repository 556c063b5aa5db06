package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/geomath"
	"wayfarer/internal/modules/camera"
	"wayfarer/internal/types"
)

func TestSurface_OverlaysByKind(t *testing.T) {
	s := New(camera.Pose{})
	s.AddOverlay(camera.RouteOverlay([]types.Point{{Lat: 1}, {Lat: 2}}, camera.RouteStyle{Width: 6}))
	s.AddOverlay(camera.HeadingOverlay(types.Point{Lat: 1}, 90))

	require.Len(t, s.Overlays(camera.OverlayRoute), 1)
	require.Len(t, s.Overlays(camera.OverlayHeading), 1)

	s.RemoveOverlays(camera.OverlayHeading)
	assert.Empty(t, s.Overlays(camera.OverlayHeading))
	assert.Len(t, s.Overlays(camera.OverlayRoute), 1)
}

func TestSurface_ShowRegionFitsBound(t *testing.T) {
	s := New(camera.Pose{Pitch: 45, Bearing: 120})
	center := types.Point{Lat: 25.03, Lng: 121.56}
	s.ShowRegion(geomath.Around(center, 1000), true)

	snap := s.Snapshot()
	assert.True(t, snap.Animated)
	assert.InDelta(t, center.Lat, snap.Pose.Center.Lat, 1e-6)
	assert.InDelta(t, center.Lng, snap.Pose.Center.Lng, 1e-6)
	assert.InDelta(t, 2000, snap.Pose.Distance, 20)
	assert.Zero(t, snap.Pose.Pitch)
	assert.Zero(t, snap.Pose.Bearing)
}

func TestSurface_RevisionAdvances(t *testing.T) {
	s := New(camera.Pose{})
	r0 := s.Snapshot().Revision
	s.SetCamera(camera.Pose{Distance: 300}, false)
	snap := s.Snapshot()
	assert.Greater(t, snap.Revision, r0)
	assert.False(t, snap.Animated)
	assert.Equal(t, 300.0, snap.Pose.Distance)
}

func TestSurface_RegionWillChangeOnlyFromClient(t *testing.T) {
	s := New(camera.Pose{})
	calls := 0
	s.OnRegionWillChange(func() { calls++ })

	s.SetCamera(camera.Pose{Distance: 10}, true)
	assert.Equal(t, 0, calls)

	s.NotifyRegionWillChange()
	assert.Equal(t, 1, calls)
}

func TestSurface_ScreenConversions(t *testing.T) {
	center := types.Point{Lat: 25.0330, Lng: 121.5654}
	tests := []struct {
		name    string
		bearing float64
		target  types.Point
		want    ScreenPoint
	}{
		{"north up, target north", 0, geomath.Offset(center, 100, 0), ScreenPoint{X: 195, Y: 322}},
		{"north up, target east", 0, geomath.Offset(center, 100, 90), ScreenPoint{X: 295, Y: 422}},
		{"facing east, target east", 90, geomath.Offset(center, 100, 90), ScreenPoint{X: 195, Y: 322}},
		{"facing east, target north", 90, geomath.Offset(center, 100, 0), ScreenPoint{X: 95, Y: 422}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(camera.Pose{Center: center, Distance: 844, Bearing: tt.bearing})
			pt, ok := s.CoordinateToPoint(tt.target)
			require.True(t, ok)
			assert.InDelta(t, tt.want.X, pt.X, 1)
			assert.InDelta(t, tt.want.Y, pt.Y, 1)

			back := s.PointToCoordinate(pt)
			assert.InDelta(t, 0, geomath.Distance(tt.target, back), 0.01)
		})
	}
}

func TestSurface_CoordinateOutsideViewport(t *testing.T) {
	center := types.Point{Lat: 25.0330, Lng: 121.5654}
	s := New(camera.Pose{Center: center, Distance: 844})
	_, ok := s.CoordinateToPoint(geomath.Offset(center, 10_000, 0))
	assert.False(t, ok)

	s.SetViewport(Viewport{Width: 0, Height: 100})
	assert.Equal(t, defaultViewport, s.Viewport())
}
