package history

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"wayfarer/internal/types"
)

var ErrNoAddress = errors.New("no address for coordinate")

type reverseGeocoder interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleGeocoder resolves coordinates to a formatted street address.
type GoogleGeocoder struct {
	client   reverseGeocoder
	language string
}

func NewGoogleGeocoder(apiKey, language string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, language: language}, nil
}

func (g *GoogleGeocoder) Address(ctx context.Context, p types.Point) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: g.language,
	})
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", ErrNoAddress
	}
	return results[0].FormattedAddress, nil
}
