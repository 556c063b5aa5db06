// README: Google Places text search adapted to destination search results.
package places

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"wayfarer/internal/types"
)

type textSearcher interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

type GoogleSearcher struct {
	client   textSearcher
	language string
	region   string
}

func NewGoogleSearcher(apiKey, language, region string, opts ...maps.ClientOption) (*GoogleSearcher, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleSearcher{client: client, language: language, region: region}, nil
}

func (g *GoogleSearcher) Search(ctx context.Context, q Query) ([]Result, error) {
	r := &maps.TextSearchRequest{
		Query:    q.Text,
		OpenNow:  q.OpenNow,
		Language: g.language,
		Region:   g.region,
	}
	if q.HasNear {
		r.Location = &maps.LatLng{Lat: q.Near.Lat, Lng: q.Near.Lng}
		r.Radius = q.Radius
	}
	resp, err := g.client.TextSearch(ctx, r)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, ErrNoResults
		}
		return nil, fmt.Errorf("places api error: %w", err)
	}
	out := make([]Result, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, Result{
			Place: types.Place{
				Name:    p.Name,
				Address: p.FormattedAddress,
				Point:   types.Point{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
			},
			PlaceID:          p.PlaceID,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
		})
	}
	return out, nil
}
