package weather

import (
	"context"
)

// Provider abstracts the forecast source (WeatherAPI.com in production, fakes in tests).
// Fetch issues a single request for q and returns a *FetchError on failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q string) (*Report, error)
}
