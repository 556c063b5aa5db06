package camera_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/config"
	"wayfarer/internal/geomath"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/camera"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/types"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time      { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock               { return &clock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)} }

var start = types.Point{Lat: 25.0330, Lng: 121.5654}

// eastRoute is a straight polyline heading due east, one vertex every 100 m.
func eastRoute(t *testing.T, vertices int) *routing.Route {
	t.Helper()
	line := make([]types.Point, vertices)
	for i := range line {
		line[i] = geomath.Offset(start, float64(i)*100, 90)
	}
	r, err := routing.NewRoute("east", routing.ModeDrive, []routing.Step{
		{Instruction: "Head east", Distance: float64(vertices-1) * 100, ReferencePoint: line[len(line)-1]},
	}, line, 0, 5*time.Minute)
	require.NoError(t, err)
	return r
}

func setup(t *testing.T, r *routing.Route) (*camera.Controller, *mapview.Surface, *clock) {
	t.Helper()
	surface := mapview.New(camera.Pose{Center: start, Distance: 1000})
	clk := newClock()
	ctrl := camera.NewController(surface, config.Defaults().Camera, clk.now)
	ctrl.SetRoute(r)
	return ctrl, surface, clk
}

func navigating(t *testing.T, ctrl *camera.Controller, clk *clock) {
	t.Helper()
	ctrl.ToggleFirstPerson(start, true)
	ctrl.StartAutoTracking(start)
	clk.add(5 * time.Second)
}

func TestStartAutoTracking_FacesAlongRoute(t *testing.T) {
	ctrl, surface, _ := setup(t, eastRoute(t, 20))
	ctrl.StartAutoTracking(start)

	pose := surface.Camera()
	assert.InDelta(t, 90, pose.Bearing, 0.5)
	assert.Equal(t, 300.0, pose.Distance)
	assert.Equal(t, 65.0, pose.Pitch)
	assert.True(t, surface.Snapshot().Animated)
	assert.True(t, ctrl.State().Active)
}

func TestStartAutoTracking_ShortPolylineKeepsBearing(t *testing.T) {
	ctrl, surface, _ := setup(t, eastRoute(t, 20))
	ctrl.StartAutoTracking(start)
	require.InDelta(t, 90, surface.Camera().Bearing, 0.5)

	single, err := routing.NewRoute("", routing.ModeDrive, []routing.Step{{Distance: 10, ReferencePoint: start}}, []types.Point{start}, 0, time.Minute)
	require.NoError(t, err)
	ctrl.SetRoute(single)
	ctrl.StartAutoTracking(geomath.Offset(start, 50, 0))
	assert.InDelta(t, 90, surface.Camera().Bearing, 0.5)
}

func TestTick_HardSetWhenNotSuspended(t *testing.T) {
	ctrl, surface, clk := setup(t, eastRoute(t, 20))
	navigating(t, ctrl, clk)
	require.InDelta(t, 90, surface.Camera().Bearing, 0.5, "entry faces along the route")

	pos := geomath.Offset(start, 300, 90)
	require.True(t, ctrl.Tick(pos))
	pose := surface.Camera()
	assert.Zero(t, pose.Bearing, "tick keeps north up")
	assert.False(t, surface.Snapshot().Animated)
	assert.InDelta(t, pos.Lat, pose.Center.Lat, 1e-9)
	assert.Equal(t, 250.0, pose.Distance)
	assert.Equal(t, 60.0, pose.Pitch)
}

func TestTick_RespectsCooldown(t *testing.T) {
	ctrl, _, clk := setup(t, eastRoute(t, 20))
	navigating(t, ctrl, clk)

	require.True(t, ctrl.Tick(start))
	clk.add(time.Second)
	assert.False(t, ctrl.Tick(start))
	clk.add(2 * time.Second)
	assert.True(t, ctrl.Tick(start))
}

func TestTick_InactiveOrThirdPerson(t *testing.T) {
	ctrl, _, clk := setup(t, eastRoute(t, 20))
	clk.add(time.Minute)
	assert.False(t, ctrl.Tick(start), "not tracking")

	ctrl.StartAutoTracking(start)
	clk.add(time.Minute)
	assert.False(t, ctrl.Tick(start), "third person")
}

func TestManualMove_SuspendsThenRecenterResumes(t *testing.T) {
	ctrl, surface, clk := setup(t, eastRoute(t, 20))
	navigating(t, ctrl, clk)

	require.True(t, ctrl.DetectManualMove())
	assert.True(t, ctrl.State().AutoTrackingSuspended)

	before := surface.Camera()
	clk.add(5 * time.Second)
	assert.False(t, ctrl.Tick(geomath.Offset(start, 500, 90)))
	assert.Equal(t, before, surface.Camera(), "suspended camera must not move")

	ctrl.Recenter(start, true)
	assert.False(t, ctrl.State().AutoTrackingSuspended)
	assert.InDelta(t, 2000, surface.Camera().Distance, 20, "tight framing around the user")

	clk.add(5 * time.Second)
	assert.True(t, ctrl.Tick(geomath.Offset(start, 500, 90)))
}

func TestManualMove_IgnoredRightAfterAutoCenter(t *testing.T) {
	ctrl, _, clk := setup(t, eastRoute(t, 20))
	navigating(t, ctrl, clk)
	require.True(t, ctrl.Tick(start))

	clk.add(500 * time.Millisecond)
	assert.False(t, ctrl.DetectManualMove())
	assert.False(t, ctrl.State().AutoTrackingSuspended)
}

func TestRecenter_NotNavigatingShowsRoute(t *testing.T) {
	r := eastRoute(t, 20)
	ctrl, surface, _ := setup(t, r)
	ctrl.Recenter(start, true)

	pose := surface.Camera()
	center := geomath.Center(r.Bounds)
	assert.InDelta(t, center.Lng, pose.Center.Lng, 1e-6)
	assert.Greater(t, pose.Distance, 1900.0)
}

func TestToggleFirstPerson(t *testing.T) {
	r := eastRoute(t, 20)
	ctrl, surface, _ := setup(t, r)
	ctrl.StartAutoTracking(start)
	require.InDelta(t, 90, surface.Camera().Bearing, 0.5)

	mode := ctrl.ToggleFirstPerson(start, true)
	assert.Equal(t, camera.FirstPerson, mode)
	pose := surface.Camera()
	assert.Zero(t, pose.Bearing, "first-person view keeps north up")
	assert.Equal(t, 400.0, pose.Distance)
	assert.Equal(t, 45.0, pose.Pitch)
	// centre sits between the user and the vertex five ahead
	assert.InDelta(t, 250, geomath.Distance(start, pose.Center), 2)
	overlays := surface.Overlays(camera.OverlayRoute)
	require.Len(t, overlays, 1)
	assert.Equal(t, 12.0, overlays[0].Style.Width)

	mode = ctrl.ToggleFirstPerson(start, true)
	assert.Equal(t, camera.ThirdPerson, mode)
	pose = surface.Camera()
	assert.Zero(t, pose.Pitch)
	overlays = surface.Overlays(camera.OverlayRoute)
	require.Len(t, overlays, 1)
	assert.Equal(t, 6.0, overlays[0].Style.Width)
}

func TestAlignWithRoute(t *testing.T) {
	ctrl, surface, _ := setup(t, eastRoute(t, 20))
	ctrl.AlignWithRoute(start)

	pose := surface.Camera()
	assert.InDelta(t, 300, geomath.Distance(start, pose.Center), 1)
	assert.InDelta(t, 90, pose.Bearing, 0.5)
	assert.Equal(t, 800.0, pose.Distance)
}

func TestHeadingIndicatorReplaced(t *testing.T) {
	ctrl, surface, _ := setup(t, eastRoute(t, 3))
	ctrl.ShowHeading(start, 10)
	ctrl.ShowHeading(start, 20)

	overlays := surface.Overlays(camera.OverlayHeading)
	require.Len(t, overlays, 1)
	assert.Equal(t, 20.0, overlays[0].Bearing)

	ctrl.HideHeading()
	assert.Empty(t, surface.Overlays(camera.OverlayHeading))
	assert.Len(t, surface.Overlays(camera.OverlayRoute), 1)
}

func TestStopAutoTracking(t *testing.T) {
	ctrl, _, clk := setup(t, eastRoute(t, 20))
	navigating(t, ctrl, clk)
	ctrl.DetectManualMove()

	ctrl.StopAutoTracking()
	st := ctrl.State()
	assert.False(t, st.Active)
	assert.False(t, st.AutoTrackingSuspended)
}
