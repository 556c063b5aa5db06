// README: Replay drives a simulated device along a polyline at constant speed.
package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wayfarer/internal/geomath"
	"wayfarer/internal/modules/heading"
	"wayfarer/internal/types"
)

var ErrEmptyPath = errors.New("replay path needs at least two points")

// Fix is one simulated reading: a position and the compass heading along the path.
type Fix struct {
	Position types.Position
	Heading  heading.Sample
	Done     bool
}

type Replay struct {
	path     []types.Point
	cum      []float64
	speed    float64
	interval time.Duration
	now      func() time.Time
}

// NewReplay walks path at speed metres per second, emitting a fix every interval.
func NewReplay(path []types.Point, speed float64, interval time.Duration) (*Replay, error) {
	if len(path) < 2 {
		return nil, ErrEmptyPath
	}
	if speed <= 0 || interval <= 0 {
		return nil, fmt.Errorf("replay: speed and interval must be positive")
	}
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + geomath.Distance(path[i-1], path[i])
	}
	return &Replay{path: path, cum: cum, speed: speed, interval: interval, now: time.Now}, nil
}

func (r *Replay) Length() float64 { return r.cum[len(r.cum)-1] }

// At returns the point and travel bearing after walking the given distance.
func (r *Replay) At(walked float64) (types.Point, float64, bool) {
	if walked <= 0 {
		return r.path[0], geomath.Bearing(r.path[0], r.path[1]), false
	}
	last := len(r.path) - 1
	if walked >= r.Length() {
		return r.path[last], geomath.Bearing(r.path[last-1], r.path[last]), true
	}
	i := 1
	for r.cum[i] < walked {
		i++
	}
	a, b := r.path[i-1], r.path[i]
	bearing := geomath.Bearing(a, b)
	return geomath.Offset(a, walked-r.cum[i-1], bearing), bearing, false
}

// Run emits one fix per tick until the end of the path is reached or ctx ends.
// The final fix has Done set.
func (r *Replay) Run(ctx context.Context, emit func(context.Context, Fix) error) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	step := r.speed * r.interval.Seconds()
	log.Printf("replay: %.0f m at %.1f m/s", r.Length(), r.speed)
	for walked := 0.0; ; walked += step {
		pt, bearing, done := r.At(walked)
		ts := r.now()
		fix := Fix{
			Position: types.Position{Point: pt, Accuracy: 5, Timestamp: ts},
			Heading:  heading.Sample{Degrees: bearing, Timestamp: ts},
			Done:     done,
		}
		if err := emit(ctx, fix); err != nil {
			log.Printf("replay: emit at %.0f m: %v", walked, err)
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
