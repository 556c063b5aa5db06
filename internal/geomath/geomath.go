// README: Pure geographic helpers over WGS84 points (distance, bearing, offsets, bounds).
package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"wayfarer/internal/types"
)

func toOrb(p types.Point) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func fromOrb(p orb.Point) types.Point {
	return types.Point{Lat: p.Lat(), Lng: p.Lon()}
}

// Distance returns the great-circle distance in metres.
func Distance(a, b types.Point) float64 {
	return geo.DistanceHaversine(toOrb(a), toOrb(b))
}

// Bearing returns the initial bearing from a to b in degrees, normalised to [0, 360).
func Bearing(a, b types.Point) float64 {
	return Normalize(geo.Bearing(toOrb(a), toOrb(b)))
}

// Offset returns the point reached by travelling meters from p along bearing.
func Offset(p types.Point, meters, bearing float64) types.Point {
	return fromOrb(geo.PointAtBearingAndDistance(toOrb(p), Normalize(bearing), meters))
}

func Midpoint(a, b types.Point) types.Point {
	return fromOrb(geo.Midpoint(toOrb(a), toOrb(b)))
}

// Nearest returns the index of the polyline vertex closest to p and its distance.
// An empty polyline yields index -1.
func Nearest(polyline []types.Point, p types.Point) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, v := range polyline {
		if d := Distance(v, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Normalize folds any angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d == 360 {
		return 0
	}
	return d
}

// AngleDelta is the smallest absolute difference between two headings; 359 and 2 are 3 apart.
func AngleDelta(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Bounds returns the bounding box of the points. An empty slice yields an empty bound at the origin.
func Bounds(points []types.Point) orb.Bound {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = toOrb(p)
	}
	return mp.Bound()
}

// Around returns a square region of side 2*radius metres centred on p.
func Around(p types.Point, radius float64) orb.Bound {
	return geo.NewBoundAroundPoint(toOrb(p), radius)
}

// Pad grows the bound by meters on every side.
func Pad(b orb.Bound, meters float64) orb.Bound {
	return geo.BoundPad(b, meters)
}

func Center(b orb.Bound) types.Point {
	return fromOrb(b.Center())
}
