// README: Google Directions provider; adapts googlemaps responses into Route values.
package routing

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"wayfarer/internal/types"
)

// Provider computes candidate routes. The first route is the preferred one.
type Provider interface {
	ComputeRoutes(ctx context.Context, req Request) ([]*Route, error)
}

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleProvider handles route computation through the Google Directions API.
type GoogleProvider struct {
	client   directionsClient
	language string
	region   string
}

// NewGoogleProvider creates a provider with the given API key. Extra client options
// (base URL, HTTP client) are passed through to the maps client.
func NewGoogleProvider(apiKey, language, region string, opts ...maps.ClientOption) (*GoogleProvider, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client, language: language, region: region}, nil
}

func (p *GoogleProvider) ComputeRoutes(ctx context.Context, req Request) ([]*Route, error) {
	r := &maps.DirectionsRequest{
		Origin:       placeQuery(req.Origin),
		Destination:  placeQuery(req.Destination),
		Mode:         googleMode(req.Mode),
		Alternatives: true,
		Language:     p.language,
		Region:       p.region,
	}
	if req.AvoidTolls {
		r.Avoid = append(r.Avoid, maps.AvoidTolls)
	}
	if req.AvoidHighways {
		r.Avoid = append(r.Avoid, maps.AvoidHighways)
	}
	if req.Mode == ModeTransit {
		r.DepartureTime = "now"
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return nil, classifyMapsError(err)
	}

	out := make([]*Route, 0, len(routes))
	for i := range routes {
		route, err := convertRoute(&routes[i], req.Mode)
		if err != nil {
			continue
		}
		out = append(out, route)
	}
	return out, nil
}

func placeQuery(p types.Place) string {
	if p.Point != (types.Point{}) {
		return strconv.FormatFloat(p.Point.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Point.Lng, 'f', 6, 64)
	}
	if p.Address != "" {
		return p.Address
	}
	return p.Name
}

func googleMode(m TravelMode) maps.Mode {
	switch m {
	case ModeWalk:
		return maps.TravelModeWalking
	case ModeTransit:
		return maps.TravelModeTransit
	default:
		return maps.TravelModeDriving
	}
}

// classifyMapsError separates semantic failures from transport failures; only the latter are retried.
func classifyMapsError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrNoRoute, err)
	case strings.Contains(msg, "REQUEST_DENIED"), strings.Contains(msg, "INVALID_REQUEST"), strings.Contains(msg, "MAX_ROUTE_LENGTH_EXCEEDED"):
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return fmt.Errorf("maps api error: %w", err)
}

func convertRoute(gr *maps.Route, mode TravelMode) (*Route, error) {
	var (
		steps    []Step
		distance float64
		duration time.Duration
	)
	for _, leg := range gr.Legs {
		if leg == nil {
			continue
		}
		distance += float64(leg.Distance.Meters)
		duration += leg.Duration
		for _, s := range leg.Steps {
			if s == nil {
				continue
			}
			steps = append(steps, Step{
				Instruction:    stripHTML(s.HTMLInstructions),
				Distance:       float64(s.Distance.Meters),
				Duration:       s.Duration,
				ReferencePoint: types.Point{Lat: s.EndLocation.Lat, Lng: s.EndLocation.Lng},
				Mode:           stepMode(s.TravelMode),
			})
		}
	}

	var polyline []types.Point
	if gr.OverviewPolyline.Points != "" {
		latlngs, err := gr.OverviewPolyline.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode polyline: %w", err)
		}
		polyline = make([]types.Point, len(latlngs))
		for i, ll := range latlngs {
			polyline[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
		}
	}

	route, err := NewRoute(gr.Summary, mode, steps, polyline, distance, duration)
	if err != nil {
		return nil, err
	}
	route.Warnings = append(route.Warnings, gr.Warnings...)
	return route, nil
}

func stepMode(googleMode string) StepMode {
	switch strings.ToUpper(googleMode) {
	case "DRIVING":
		return StepDrive
	case "WALKING":
		return StepWalking
	case "TRANSIT":
		return StepTransit
	}
	return StepOther
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// stripHTML turns Google's html_instructions into plain text; block tags become spaces.
func stripHTML(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
