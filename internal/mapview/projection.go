package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"wayfarer/internal/types"
)

// Viewport is the client's map size in screen points.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenPoint is measured from the top-left corner of the viewport.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var defaultViewport = Viewport{Width: 390, Height: 844}

func (s *Surface) SetViewport(v Viewport) {
	if v.Width <= 0 || v.Height <= 0 {
		return
	}
	s.mu.Lock()
	s.viewport = v
	s.mu.Unlock()
}

func (s *Surface) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// frame returns the camera centre in Web Mercator, the Mercator units per screen point and
// the heading rotation. Pitch is ignored; conversions are for the top-down view.
func (s *Surface) frame() (c orb.Point, scale, sin, cos float64, v Viewport) {
	s.mu.RLock()
	pose, v := s.pose, s.viewport
	s.mu.RUnlock()

	c = project.WGS84.ToMercator(orb.Point{pose.Center.Lng, pose.Center.Lat})
	// Mercator stretches ground distance by 1/cos(lat).
	scale = pose.Distance / v.Height / math.Cos(pose.Center.Lat*math.Pi/180)
	rad := pose.Bearing * math.Pi / 180
	return c, scale, math.Sin(rad), math.Cos(rad), v
}

// CoordinateToPoint projects p onto the screen. ok is false when it falls outside the viewport.
func (s *Surface) CoordinateToPoint(p types.Point) (pt ScreenPoint, ok bool) {
	c, scale, sin, cos, v := s.frame()
	if scale <= 0 || math.IsInf(scale, 0) {
		return ScreenPoint{}, false
	}
	q := project.WGS84.ToMercator(orb.Point{p.Lng, p.Lat})
	dx, dy := q.X()-c.X(), q.Y()-c.Y()
	right := dx*cos - dy*sin
	up := dx*sin + dy*cos
	pt = ScreenPoint{X: v.Width/2 + right/scale, Y: v.Height/2 - up/scale}
	ok = pt.X >= 0 && pt.X <= v.Width && pt.Y >= 0 && pt.Y <= v.Height
	return pt, ok
}

// PointToCoordinate converts a screen point back to a coordinate.
func (s *Surface) PointToCoordinate(pt ScreenPoint) types.Point {
	c, scale, sin, cos, v := s.frame()
	right := (pt.X - v.Width/2) * scale
	up := (v.Height/2 - pt.Y) * scale
	dx := right*cos + up*sin
	dy := -right*sin + up*cos
	w := project.Mercator.ToWGS84(orb.Point{c.X() + dx, c.Y() + dy})
	return types.Point{Lat: w.Lat(), Lng: w.Lon()}
}
