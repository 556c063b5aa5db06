// README: Recent destination entries kept for quick re-routing.
package history

import (
	"fmt"
	"time"

	"wayfarer/internal/types"
)

const DefaultCapacity = 50

type Entry struct {
	Place   types.Place `json:"place"`
	AddedAt time.Time   `json:"added_at"`
}

// key identifies a destination regardless of when it was visited.
func (e Entry) key() string {
	return fmt.Sprintf("%s|%.5f|%.5f", e.Place.Name, e.Place.Point.Lat, e.Place.Point.Lng)
}
