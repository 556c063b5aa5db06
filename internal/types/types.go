// README: Shared value objects used across modules (identifiers, coordinates, places).
package types

import (
	"math"
	"time"
)

type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Position is a device location fix.
type Position struct {
	Point
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type Place struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Point   Point  `json:"point"`
}
