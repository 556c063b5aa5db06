// README: Device location model: authorization state and persisted position snapshot.
package location

import (
	"errors"
	"time"

	"wayfarer/internal/types"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrStalePosition   = errors.New("position older than last known fix")
	ErrNotFound        = errors.New("no stored position")
)

type Authorization string

const (
	AuthNotDetermined Authorization = "not_determined"
	AuthDenied        Authorization = "denied"
	AuthWhenInUse     Authorization = "when_in_use"
	AuthAlways        Authorization = "always"
)

func (a Authorization) Granted() bool {
	return a == AuthWhenInUse || a == AuthAlways
}

type Snapshot struct {
	DeviceID   types.ID
	Position   types.Position
	RecordedAt time.Time
}
