// README: Destination search results.
package places

import (
	"errors"

	"wayfarer/internal/types"
)

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrNoResults  = errors.New("no places found")
)

// Result is a search hit the user can route to.
type Result struct {
	types.Place
	PlaceID          string  `json:"place_id"`
	Rating           float32 `json:"rating,omitempty"`
	UserRatingsTotal int     `json:"user_ratings_total,omitempty"`
}

// Query narrows a search around a point. A zero Near searches without location bias.
type Query struct {
	Text    string
	Near    types.Point
	HasNear bool
	Radius  uint
	OpenNow bool
}
