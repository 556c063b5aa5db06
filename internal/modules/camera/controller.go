// README: Camera controller; navigation framing, periodic re-centering, manual-move suspension and view toggling.
package camera

import (
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/geomath"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/types"
)

const (
	alignDistance = 800.0
	alignPitch    = 60.0
	alignOffset   = 300.0
)

var (
	firstPersonStyle = RouteStyle{Width: 12, Color: "#1E88E5"}
	overviewStyle    = RouteStyle{Width: 6, Color: "#1E88E5"}
)

// Controller owns camera state. It must only be used from the coordinator goroutine.
type Controller struct {
	surface MapSurface
	cfg     config.CameraConfig
	now     func() time.Time

	route          *routing.Route
	active         bool
	mode           Mode
	suspended      bool
	lastAutoCenter time.Time
	bearing        float64
}

func NewController(surface MapSurface, cfg config.CameraConfig, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{surface: surface, cfg: cfg, now: now}
}

func (c *Controller) State() State {
	return State{
		Active:                c.active,
		Mode:                  c.mode,
		Pose:                  c.surface.Camera(),
		AutoTrackingSuspended: c.suspended,
	}
}

func (c *Controller) Mode() Mode { return c.mode }

// SetRoute swaps the route the camera frames and redraws its overlay. nil removes it.
func (c *Controller) SetRoute(r *routing.Route) {
	c.route = r
	c.renderRoute()
}

func (c *Controller) renderRoute() {
	c.surface.RemoveOverlays(OverlayRoute)
	if c.route == nil {
		return
	}
	style := overviewStyle
	if c.mode == FirstPerson {
		style = firstPersonStyle
	}
	c.surface.AddOverlay(RouteOverlay(c.route.Polyline, style))
}

// forwardBearing looks lookAhead vertices past the vertex nearest pos. With fewer than two
// polyline points the previous bearing is kept.
func (c *Controller) forwardBearing(pos types.Point, lookAhead int) float64 {
	if c.route == nil || len(c.route.Polyline) < 2 {
		return c.bearing
	}
	line := c.route.Polyline
	idx, _ := geomath.Nearest(line, pos)
	ahead := min(idx+lookAhead, len(line)-1)
	switch {
	case ahead > idx:
		c.bearing = geomath.Bearing(line[idx], line[ahead])
	case idx > 0:
		c.bearing = geomath.Bearing(line[idx-1], line[idx])
	}
	return c.bearing
}

func (c *Controller) lookAheadPoint(pos types.Point, lookAhead int) (types.Point, bool) {
	if c.route == nil || len(c.route.Polyline) == 0 {
		return types.Point{}, false
	}
	line := c.route.Polyline
	idx, _ := geomath.Nearest(line, pos)
	return line[min(idx+lookAhead, len(line)-1)], true
}

// StartAutoTracking enters navigation framing at pos, facing along the route.
func (c *Controller) StartAutoTracking(pos types.Point) {
	c.active = true
	c.suspended = false
	c.surface.SetCamera(Pose{
		Center:   pos,
		Distance: c.cfg.EntryDistance,
		Pitch:    c.cfg.EntryPitch,
		Bearing:  c.forwardBearing(pos, c.cfg.LookAhead),
	}, true)
	c.lastAutoCenter = c.now()
}

func (c *Controller) StopAutoTracking() {
	c.active = false
	c.suspended = false
}

// Tick re-centers on pos without animation, north up. It does nothing while suspended,
// outside first-person navigation, or within the cooldown of the previous auto-center.
func (c *Controller) Tick(pos types.Point) bool {
	if !c.active || c.suspended || c.mode != FirstPerson {
		return false
	}
	now := c.now()
	if now.Sub(c.lastAutoCenter) < c.cfg.Cooldown {
		return false
	}
	c.surface.SetCamera(Pose{
		Center:   pos,
		Distance: c.cfg.TrackingDistance,
		Pitch:    c.cfg.TrackingPitch,
		Bearing:  0,
	}, false)
	c.lastAutoCenter = now
	return true
}

// DetectManualMove is called when the map region is about to change. Changes that come
// long after our own last auto-center are attributed to the user.
func (c *Controller) DetectManualMove() bool {
	if !c.active || c.suspended {
		return false
	}
	if c.now().Sub(c.lastAutoCenter) > c.cfg.ManualMoveThreshold {
		c.suspended = true
		return true
	}
	return false
}

// Recenter resumes auto-tracking and frames the user while navigating, otherwise the route.
func (c *Controller) Recenter(pos types.Point, havePos bool) {
	c.suspended = false
	c.lastAutoCenter = c.now()
	switch {
	case c.active && havePos:
		c.surface.ShowRegion(geomath.Around(pos, c.cfg.RecenterRadius), true)
	case c.route != nil:
		c.surface.ShowRegion(geomath.Pad(c.route.Bounds, c.cfg.RoutePadding), true)
	case havePos:
		c.surface.ShowRegion(geomath.Around(pos, c.cfg.RecenterRadius), true)
	}
}

// ToggleFirstPerson swaps view mode, recomputes the pose and redraws the route overlay.
// Both views keep north up; only auto-tracking entry and AlignWithRoute face along the route.
func (c *Controller) ToggleFirstPerson(pos types.Point, havePos bool) Mode {
	current := c.surface.Camera()
	if c.mode == ThirdPerson {
		c.mode = FirstPerson
		center := current.Center
		if havePos {
			center = pos
			if ahead, ok := c.lookAheadPoint(pos, c.cfg.FirstPersonLookAhead); ok {
				center = geomath.Midpoint(pos, ahead)
			}
		}
		c.surface.SetCamera(Pose{
			Center:   center,
			Distance: c.cfg.FirstPersonDistance,
			Pitch:    c.cfg.FirstPersonPitch,
			Bearing:  0,
		}, true)
	} else {
		c.mode = ThirdPerson
		c.surface.SetCamera(Pose{
			Center:   current.Center,
			Distance: c.cfg.OverviewDistance,
		}, true)
		if c.route != nil {
			c.surface.ShowRegion(geomath.Pad(c.route.Bounds, c.cfg.RoutePadding), true)
		}
	}
	c.renderRoute()
	return c.mode
}

// AlignWithRoute points the camera down the route with the user in the lower part of the view.
func (c *Controller) AlignWithRoute(pos types.Point) {
	bearing := c.forwardBearing(pos, c.cfg.LookAhead)
	c.surface.SetCamera(Pose{
		Center:   geomath.Offset(pos, alignOffset, bearing),
		Distance: alignDistance,
		Pitch:    alignPitch,
		Bearing:  bearing,
	}, true)
	c.lastAutoCenter = c.now()
}

// ShowHeading replaces the heading indicator.
func (c *Controller) ShowHeading(pos types.Point, bearing float64) {
	c.surface.RemoveOverlays(OverlayHeading)
	c.surface.AddOverlay(HeadingOverlay(pos, bearing))
}

func (c *Controller) HideHeading() {
	c.surface.RemoveOverlays(OverlayHeading)
}
