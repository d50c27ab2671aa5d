package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

// maxErrorBody caps how much of a failed response body is read into an error.
const maxErrorBody = 4 << 10

// HTTPClientConfig bundles the HTTP client and circuit breaker settings.
type HTTPClientConfig struct {
	Client *http.Client

	// Consecutive failures (transport errors and 5xx) before the circuit opens.
	FailureThreshold uint32
	// How long the circuit stays open before a trial request is let through.
	OpenTimeout time.Duration
}

var errNoHTTPClient = errors.New("http client not configured")

// serverError carries a 5xx response through the circuit breaker so it counts as a failure.
type serverError struct {
	status int
	phrase string
	body   []byte
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d", e.status)
}

func newCircuitBreaker(name string, cfg HTTPClientConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// doRequest executes exactly one request through the circuit breaker.
// Non-2xx responses come back as *weather.FetchError with the body already consumed;
// a 2xx response is returned open for the caller to decode and close.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, &weather.FetchError{Kind: weather.KindTransport, Err: errNoHTTPClient}
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode >= 500 {
			body, _ := readErrorBody(resp)
			return nil, &serverError{status: resp.StatusCode, phrase: statusPhrase(resp), body: body}
		}

		// 4xx means the provider answered; it must not trip the breaker.
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.FetchError{Kind: weather.KindUnavailable, Err: err}
		}
		var se *serverError
		if errors.As(err, &se) {
			return nil, newStatusError(se.status, se.phrase, se.body)
		}
		return nil, &weather.FetchError{Kind: weather.KindTransport, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &weather.FetchError{Kind: weather.KindTransport, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := readErrorBody(resp)
		return nil, newStatusError(resp.StatusCode, statusPhrase(resp), body)
	}

	return resp, nil
}

func readErrorBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
}

// statusPhrase returns "Bad Request" for a "400 Bad Request" status line.
func statusPhrase(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
