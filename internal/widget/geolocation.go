package widget

import (
	"context"
	"errors"
	"time"
)

// DefaultPositionTimeout bounds how long a position request may take.
const DefaultPositionTimeout = 10 * time.Second

// ErrLocationUnavailable is returned by locators that could not produce a position
// and have no more specific message.
var ErrLocationUnavailable = errors.New("could not get location")

// Position is a device position in decimal degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// PositionOptions mirror the options a device position request is made with.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Locator resolves the current device position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// ReportedPosition is a Locator for a position the browser already resolved.
// Err carries the browser's error message when the lookup failed there.
type ReportedPosition struct {
	Position Position
	Err      error
}

func (r ReportedPosition) CurrentPosition(ctx context.Context, _ PositionOptions) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if r.Err != nil {
		return Position{}, r.Err
	}
	return r.Position, nil
}
