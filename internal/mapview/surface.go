// README: In-memory map surface; holds the camera pose and overlays that the device client renders.
package mapview

import (
	"math"
	"sync"

	"github.com/paulmach/orb"

	"wayfarer/internal/geomath"
	"wayfarer/internal/modules/camera"
	"wayfarer/internal/types"
)

// Snapshot is what the client polls to redraw its map.
type Snapshot struct {
	Revision uint64           `json:"revision"`
	Pose     camera.Pose      `json:"pose"`
	Animated bool             `json:"animated"`
	Overlays []camera.Overlay `json:"overlays"`
}

type Surface struct {
	mu       sync.RWMutex
	rev      uint64
	pose     camera.Pose
	animated bool
	overlays []camera.Overlay
	viewport Viewport
	onChange func()
}

func New(initial camera.Pose) *Surface {
	return &Surface{pose: initial, viewport: defaultViewport}
}

// OnRegionWillChange registers the callback fired for user-initiated region changes.
func (s *Surface) OnRegionWillChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// NotifyRegionWillChange reports a gesture from the client. Programmatic moves never fire it.
func (s *Surface) NotifyRegionWillChange() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *Surface) Camera() camera.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose
}

func (s *Surface) SetCamera(p camera.Pose, animated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pose = p
	s.animated = animated
	s.rev++
}

// ShowRegion frames the bound north-up, with the camera far enough out to fit its longer side.
func (s *Surface) ShowRegion(b orb.Bound, animated bool) {
	sw := types.Point{Lat: b.Min.Lat(), Lng: b.Min.Lon()}
	width := geomath.Distance(sw, types.Point{Lat: b.Min.Lat(), Lng: b.Max.Lon()})
	height := geomath.Distance(sw, types.Point{Lat: b.Max.Lat(), Lng: b.Min.Lon()})
	s.SetCamera(camera.Pose{
		Center:   geomath.Center(b),
		Distance: math.Max(width, height),
	}, animated)
}

func (s *Surface) AddOverlay(o camera.Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = append(s.overlays, o)
	s.rev++
}

func (s *Surface) RemoveOverlays(kind camera.OverlayKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.overlays[:0]
	for _, o := range s.overlays {
		if o.Kind != kind {
			kept = append(kept, o)
		}
	}
	s.overlays = kept
	s.rev++
}

// Overlays returns the overlays of one kind.
func (s *Surface) Overlays(kind camera.OverlayKind) []camera.Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []camera.Overlay
	for _, o := range s.overlays {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Revision: s.rev,
		Pose:     s.pose,
		Animated: s.animated,
		Overlays: append([]camera.Overlay(nil), s.overlays...),
	}
}
