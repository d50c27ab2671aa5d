package weather

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyQuery is returned when a location query is empty after trimming.
var ErrEmptyQuery = errors.New("empty location query")

// NormalizeQuery trims surrounding whitespace and rejects empty queries.
func NormalizeQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

// BuildForecastURL builds the forecast request target for q.
// One day of forecast is requested together with air quality and alerts.
// The query is opaque here: place names and "lat,lon" pairs are passed through as-is.
func BuildForecastURL(baseURL, apiKey, q string) (string, error) {
	q, err := NormalizeQuery(q)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("key", apiKey)
	values.Set("q", q)
	values.Set("days", "1")
	values.Set("aqi", "yes")
	values.Set("alerts", "yes")

	return fmt.Sprintf("%s?%s", baseURL, values.Encode()), nil
}

// FormatCoordinates formats a device position as a query, e.g. "51.50735,-0.12776".
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}
