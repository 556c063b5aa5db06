// README: Camera pose, view mode and map overlay types shared with the map surface.
package camera

import (
	"fmt"

	"github.com/paulmach/orb"

	"wayfarer/internal/types"
)

type Mode int

const (
	ThirdPerson Mode = iota
	FirstPerson
)

func (m Mode) String() string {
	if m == FirstPerson {
		return "first_person"
	}
	return "third_person"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "first_person":
		*m = FirstPerson
	case "third_person":
		*m = ThirdPerson
	default:
		return fmt.Errorf("unknown camera mode %q", b)
	}
	return nil
}

// Pose is a map camera looking at Center from Distance metres, tilted by Pitch and rotated to Bearing.
type Pose struct {
	Center   types.Point `json:"center"`
	Distance float64     `json:"distance_m"`
	Pitch    float64     `json:"pitch"`
	Bearing  float64     `json:"bearing"`
}

type State struct {
	Active                bool `json:"active"`
	Mode                  Mode `json:"mode"`
	Pose                  Pose `json:"pose"`
	AutoTrackingSuspended bool `json:"auto_tracking_suspended"`
}

type OverlayKind int

const (
	OverlayRoute OverlayKind = iota
	OverlayHeading
)

func (k OverlayKind) String() string {
	if k == OverlayHeading {
		return "heading"
	}
	return "route"
}

func (k OverlayKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *OverlayKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "route":
		*k = OverlayRoute
	case "heading":
		*k = OverlayHeading
	default:
		return fmt.Errorf("unknown overlay kind %q", b)
	}
	return nil
}

type RouteStyle struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Overlay is either a route polyline or a heading indicator; Kind says which payload is set.
type Overlay struct {
	Kind     OverlayKind   `json:"kind"`
	Polyline []types.Point `json:"polyline,omitempty"`
	Style    RouteStyle    `json:"style"`
	Position types.Point   `json:"position"`
	Bearing  float64       `json:"bearing,omitempty"`
}

func RouteOverlay(polyline []types.Point, style RouteStyle) Overlay {
	return Overlay{Kind: OverlayRoute, Polyline: polyline, Style: style}
}

func HeadingOverlay(pos types.Point, bearing float64) Overlay {
	return Overlay{Kind: OverlayHeading, Position: pos, Bearing: bearing}
}

// MapSurface is the rendering target the controller drives.
type MapSurface interface {
	Camera() Pose
	SetCamera(p Pose, animated bool)
	ShowRegion(b orb.Bound, animated bool)
	AddOverlay(o Overlay)
	RemoveOverlays(kind OverlayKind)
}
