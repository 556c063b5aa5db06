package heading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/config"
	"wayfarer/internal/types"
)

type fixedPosition struct {
	pos types.Position
	ok  bool
}

func (f fixedPosition) LastKnown() (types.Position, bool) { return f.pos, f.ok }

type indicatorCall struct {
	pos     types.Point
	bearing float64
}

type recordingIndicator struct {
	shown  []indicatorCall
	hidden int
}

func (r *recordingIndicator) ShowHeading(pos types.Point, bearing float64) {
	r.shown = append(r.shown, indicatorCall{pos, bearing})
}
func (r *recordingIndicator) HideHeading() { r.hidden++ }

type stubSource struct {
	started, stopped int
	err              error
}

func (s *stubSource) Start() error { s.started++; return s.err }
func (s *stubSource) Stop()        { s.stopped++ }

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func at(ms int, deg float64) Sample {
	return Sample{Degrees: deg, Timestamp: t0.Add(time.Duration(ms) * time.Millisecond)}
}

func newSampler(t *testing.T) (*Sampler, *recordingIndicator) {
	t.Helper()
	ind := &recordingIndicator{}
	pos := fixedPosition{pos: types.Position{Point: types.Point{Lat: 25, Lng: 121}}, ok: true}
	s := NewSampler(config.Defaults().Heading, pos, ind, nil)
	require.NoError(t, s.Enable())
	return s, ind
}

func TestOffer_Sequence(t *testing.T) {
	s, _ := newSampler(t)

	var accepted []float64
	s.OnStable(func(st Stable) { accepted = append(accepted, st.Degrees) })

	assert.True(t, s.Offer(at(0, 10)), "first sample always accepted")
	assert.False(t, s.Offer(at(300, 11)), "too soon")
	assert.False(t, s.Offer(at(700, 12)), "fast but turn of 2 degrees")
	assert.True(t, s.Offer(at(800, 20)), "fast and turn of 10 degrees")
	assert.True(t, s.Offer(at(2800, 20)), "min interval elapsed")

	assert.Equal(t, []float64{10, 20, 20}, accepted)
}

func TestOffer_ThresholdTable(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   bool
	}{
		{"first sample at t0", at(0, 0), true},
		{"2 degrees after 0.2 s", at(200, 2), false},
		{"10 degrees after 0.6 s", at(600, 10), true},
	}

	s, _ := newSampler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Offer(tt.sample))
		})
	}
}

func TestOffer_WrapAround(t *testing.T) {
	s, _ := newSampler(t)
	require.True(t, s.Offer(at(0, 359)))
	assert.False(t, s.Offer(at(600, 2)), "359 to 2 is a 3 degree turn")
	assert.True(t, s.Offer(at(700, 3)), "359 to 3 is 4 degrees")
}

func TestOffer_RawListenersSeeEverything(t *testing.T) {
	s, _ := newSampler(t)
	raw := 0
	s.OnRaw(func(Sample) { raw++ })
	s.Offer(at(0, 10))
	s.Offer(at(100, 10))
	s.Offer(at(200, 10))
	assert.Equal(t, 3, raw)
}

func TestOffer_RedrawsIndicatorAtLastPosition(t *testing.T) {
	s, ind := newSampler(t)
	s.Offer(at(0, 45))
	s.Offer(at(100, 90))

	require.Len(t, ind.shown, 1)
	assert.Equal(t, 45.0, ind.shown[0].bearing)
	assert.Equal(t, 25.0, ind.shown[0].pos.Lat)
}

func TestOffer_NoPositionNoIndicator(t *testing.T) {
	ind := &recordingIndicator{}
	s := NewSampler(config.Defaults().Heading, fixedPosition{}, ind, nil)
	require.NoError(t, s.Enable())
	assert.True(t, s.Offer(at(0, 45)))
	assert.Empty(t, ind.shown)
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, 45.0, cur.Degrees)
}

func TestOffer_DisabledDrops(t *testing.T) {
	ind := &recordingIndicator{}
	s := NewSampler(config.Defaults().Heading, fixedPosition{}, ind, nil)
	assert.False(t, s.Offer(at(0, 45)))
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestEnableDisableLifecycle(t *testing.T) {
	src := &stubSource{}
	ind := &recordingIndicator{}
	s := NewSampler(config.Defaults().Heading, fixedPosition{}, ind, src)

	require.NoError(t, s.Enable())
	require.NoError(t, s.Enable())
	assert.Equal(t, 1, src.started)
	assert.True(t, s.Enabled())

	s.Disable()
	s.Disable()
	assert.Equal(t, 1, src.stopped)
	assert.Equal(t, 1, ind.hidden)
	assert.False(t, s.Enabled())

	src.err = errors.New("no compass")
	assert.Error(t, s.Enable())
	assert.False(t, s.Enabled())
}

func TestPositionChanged(t *testing.T) {
	s, ind := newSampler(t)
	s.PositionChanged(types.Point{Lat: 1})
	assert.Empty(t, ind.shown, "no heading yet")

	s.Offer(at(0, 30))
	s.PositionChanged(types.Point{Lat: 2})
	require.Len(t, ind.shown, 2)
	assert.Equal(t, indicatorCall{types.Point{Lat: 2}, 30}, ind.shown[1])
}

func TestRun_PostsEverySample(t *testing.T) {
	s, _ := newSampler(t)
	samples := make(chan Sample, 3)
	samples <- at(0, 10)
	samples <- at(100, 50)
	samples <- at(3000, 50)
	close(samples)

	var posted []func()
	s.Run(context.Background(), samples, func(fn func()) { posted = append(posted, fn) })
	require.Len(t, posted, 3)
	for _, fn := range posted {
		fn()
	}
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, t0.Add(3*time.Second), cur.AcceptedAt)
}
