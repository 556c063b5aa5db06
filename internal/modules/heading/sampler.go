// README: Heading sampler; rate-limits compass samples into a stable heading and drives the heading indicator.
package heading

import (
	"context"
	"fmt"
	"log"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/geomath"
	"wayfarer/internal/types"
)

type Sample struct {
	Degrees   float64   `json:"degrees"`
	Timestamp time.Time `json:"timestamp"`
}

type Stable struct {
	Degrees    float64   `json:"degrees"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type PositionSource interface {
	LastKnown() (types.Position, bool)
}

// IndicatorSink draws the heading indicator overlay.
type IndicatorSink interface {
	ShowHeading(pos types.Point, bearing float64)
	HideHeading()
}

// Source is the device compass lifecycle.
type Source interface {
	Start() error
	Stop()
}

// Sampler is owned by the coordinator goroutine; Run is the only method safe to call elsewhere.
type Sampler struct {
	cfg       config.HeadingConfig
	positions PositionSource
	indicator IndicatorSink
	source    Source

	enabled  bool
	hasLast  bool
	last     Stable
	onStable []func(Stable)
	onRaw    []func(Sample)
}

func NewSampler(cfg config.HeadingConfig, positions PositionSource, indicator IndicatorSink, source Source) *Sampler {
	return &Sampler{cfg: cfg, positions: positions, indicator: indicator, source: source}
}

func (s *Sampler) OnStable(fn func(Stable)) { s.onStable = append(s.onStable, fn) }
func (s *Sampler) OnRaw(fn func(Sample))    { s.onRaw = append(s.onRaw, fn) }

func (s *Sampler) Enabled() bool { return s.enabled }

// Current returns the last accepted heading.
func (s *Sampler) Current() (Stable, bool) { return s.last, s.hasLast }

// Enable starts the compass. Enabling twice is a no-op.
func (s *Sampler) Enable() error {
	if s.enabled {
		return nil
	}
	if s.source != nil {
		if err := s.source.Start(); err != nil {
			return fmt.Errorf("start heading source: %w", err)
		}
	}
	s.enabled = true
	s.hasLast = false
	return nil
}

// Disable stops the compass and hides the indicator.
func (s *Sampler) Disable() {
	if !s.enabled {
		return
	}
	if s.source != nil {
		s.source.Stop()
	}
	s.enabled = false
	s.hasLast = false
	s.indicator.HideHeading()
}

// Offer filters one sample. The first sample is always taken; later ones need either the
// minimum interval, or the fast interval together with a turn larger than the angle threshold.
// Rejected samples are dropped.
func (s *Sampler) Offer(sample Sample) bool {
	if !s.enabled {
		return false
	}
	sample.Degrees = geomath.Normalize(sample.Degrees)
	for _, fn := range s.onRaw {
		fn(sample)
	}
	if s.hasLast && !s.accepts(sample) {
		return false
	}
	s.last = Stable{Degrees: sample.Degrees, AcceptedAt: sample.Timestamp}
	s.hasLast = true
	if pos, ok := s.positions.LastKnown(); ok {
		s.indicator.ShowHeading(pos.Point, sample.Degrees)
	}
	for _, fn := range s.onStable {
		fn(s.last)
	}
	return true
}

func (s *Sampler) accepts(sample Sample) bool {
	elapsed := sample.Timestamp.Sub(s.last.AcceptedAt)
	if elapsed >= s.cfg.MinInterval {
		return true
	}
	return elapsed >= s.cfg.FastInterval && geomath.AngleDelta(sample.Degrees, s.last.Degrees) > s.cfg.AngleThreshold
}

// PositionChanged moves the indicator with the device.
func (s *Sampler) PositionChanged(pos types.Point) {
	if s.enabled && s.hasLast {
		s.indicator.ShowHeading(pos, s.last.Degrees)
	}
}

// Run forwards samples to the coordinator through post until ctx ends or samples closes.
func (s *Sampler) Run(ctx context.Context, samples <-chan Sample, post func(func())) {
	for {
		select {
		case <-ctx.Done():
			return
		case smp, ok := <-samples:
			if !ok {
				log.Printf("heading: sample stream closed")
				return
			}
			post(func() { s.Offer(smp) })
		}
	}
}
