package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/common"
	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultForecastURL is WeatherAPI.com's forecast endpoint.
const DefaultForecastURL = "https://api.weatherapi.com/v1/forecast.json"

// errIncompleteReport marks a 2xx body without a location or current conditions.
var errIncompleteReport = errors.New("forecast response has no location or current conditions")

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherAPIProvider creates a provider for the forecast endpoint at baseURL.
// An empty baseURL selects DefaultForecastURL.
func NewWeatherAPIProvider(cfg HTTPClientConfig, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("weatherapi", cfg),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch requests today's forecast, air quality and alerts for q.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, q string) (*weather.Report, error) {
	u, err := weather.BuildForecastURL(p.baseURL, p.apiKey, q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, &weather.FetchError{Kind: weather.KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report weather.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, &weather.FetchError{Kind: weather.KindDecode, Err: err}
	}
	if !report.Complete() {
		return nil, &weather.FetchError{Kind: weather.KindDecode, Err: errIncompleteReport}
	}

	return &report, nil
}

// errorBody is WeatherAPI's error envelope, e.g. {"error":{"code":2006,"message":"API key is invalid."}}.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newStatusError builds a KindStatus error. The detail prefers the provider's
// structured message, then the raw body, then the status phrase.
func newStatusError(status int, phrase string, body []byte) *weather.FetchError {
	trimmed := bytes.TrimSpace(body)

	var eb errorBody
	if len(trimmed) > 0 {
		_ = json.Unmarshal(trimmed, &eb)
	}
	message := strings.TrimSpace(eb.Error.Message)

	return &weather.FetchError{
		Kind:            weather.KindStatus,
		StatusCode:      status,
		Detail:          common.FirstNonBlank(message, string(trimmed), phrase),
		ProviderMessage: message,
		Err:             fmt.Errorf("unexpected status code: %d", status),
	}
}
