package weather

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForecastURL(t *testing.T) {
	queries := []string{"London", "  New York  ", "São Paulo", "51.50735,-0.12776", "a&b=c?d#e"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			raw, err := BuildForecastURL("https://example.test/v1/forecast.json", "secret", q)
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, "example.test", u.Host)
			assert.Equal(t, "/v1/forecast.json", u.Path)

			values := u.Query()
			assert.Equal(t, "secret", values.Get("key"))
			assert.Equal(t, strings.TrimSpace(q), values.Get("q"))
			assert.Equal(t, "1", values.Get("days"))
			assert.Equal(t, "yes", values.Get("aqi"))
			assert.Equal(t, "yes", values.Get("alerts"))
			assert.Len(t, values, 5)
		})
	}
}

func TestBuildForecastURLEncodesQuery(t *testing.T) {
	raw, err := BuildForecastURL("https://example.test/f", "k", "a&b=c")
	require.NoError(t, err)
	assert.Contains(t, raw, "q=a%26b%3Dc")
	assert.NotContains(t, raw, "b=c&")
}

func TestBuildForecastURLRejectsEmptyQuery(t *testing.T) {
	for _, q := range []string{"", " ", "\t\n"} {
		_, err := BuildForecastURL("https://example.test/f", "k", q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestFormatCoordinates(t *testing.T) {
	assert.Equal(t, "51.50735,-0.12776", FormatCoordinates(51.507351, -0.127758))
	assert.Equal(t, "0.00000,0.00000", FormatCoordinates(0, 0))
	assert.Equal(t, "-33.86880,151.20930", FormatCoordinates(-33.8688, 151.2093))
}
