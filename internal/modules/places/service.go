// README: Destination search near the device or along the active route.
package places

import (
	"context"
	"log"
	"strings"

	"wayfarer/internal/geomath"
	"wayfarer/internal/types"
)

const (
	DefaultLimit        = 10
	nearbyRadius        = 5000
	alongRouteRadius    = 1000
	alongRouteSpacing   = 2000.0
	maxAlongRouteProbes = 5
)

type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

type Service struct {
	searcher Searcher
}

func NewService(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Nearby searches around near when known, keeping the provider order.
func (s *Service) Nearby(ctx context.Context, text string, near types.Point, haveNear bool, limit int) ([]Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	res, err := s.searcher.Search(ctx, Query{Text: text, Near: near, HasNear: haveNear, Radius: nearbyRadius})
	if err != nil {
		return nil, err
	}
	return truncate(res, limit), nil
}

// AlongRoute probes evenly spaced points of the polyline and merges the results by place ID.
// Failed probes are skipped.
func (s *Service) AlongRoute(ctx context.Context, text string, polyline []types.Point, limit int) ([]Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	seen := make(map[string]bool)
	var out []Result
	for _, p := range probes(polyline) {
		res, err := s.searcher.Search(ctx, Query{Text: text, Near: p, HasNear: true, Radius: alongRouteRadius})
		if err != nil {
			log.Printf("places: probe at %.5f,%.5f: %v", p.Lat, p.Lng, err)
			continue
		}
		for _, r := range res {
			if seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return truncate(out, limit), nil
}

// probes picks route vertices roughly alongRouteSpacing apart, always including both ends.
func probes(polyline []types.Point) []types.Point {
	if len(polyline) == 0 {
		return nil
	}
	pts := []types.Point{polyline[0]}
	walked := 0.0
	for i := 1; i < len(polyline) && len(pts) < maxAlongRouteProbes-1; i++ {
		walked += geomath.Distance(polyline[i-1], polyline[i])
		if walked >= alongRouteSpacing {
			pts = append(pts, polyline[i])
			walked = 0
		}
	}
	if last := polyline[len(polyline)-1]; len(polyline) > 1 && last != pts[len(pts)-1] {
		pts = append(pts, last)
	}
	return pts
}

func truncate(res []Result, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}
