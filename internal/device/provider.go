// README: Device provider contracts; where location fixes and compass samples come from.
package device

import (
	"context"
	"errors"

	"wayfarer/internal/modules/heading"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrNotStarted       = errors.New("updates not started")
)

// LocationProvider delivers position fixes once updates are started.
type LocationProvider interface {
	RequestPermission(ctx context.Context) (location.Authorization, error)
	StartUpdates() error
	StopUpdates()
	RequestOneShot(ctx context.Context) (types.Position, error)
	Positions() <-chan types.Position
	Authorization() location.Authorization
}

// HeadingProvider delivers raw compass samples between Start and Stop.
type HeadingProvider interface {
	Start() error
	Stop()
	Samples() <-chan heading.Sample
}
