package weather

import (
	"errors"
	"fmt"

	"github.com/i474232898/weather-widget/internal/common"
)

// GenericFetchMessage is shown for failures that did not come from the provider.
const GenericFetchMessage = "Could not fetch weather. Check the location and try again."

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	KindTransport   ErrorKind = "transport"
	KindStatus      ErrorKind = "status"
	KindDecode      ErrorKind = "decode"
	KindUnavailable ErrorKind = "unavailable"
)

// FetchError describes a failed forecast fetch.
type FetchError struct {
	Kind ErrorKind

	// Set for KindStatus.
	StatusCode int
	// Detail is the provider message, the raw body or the status phrase, in that order of preference.
	Detail string
	// ProviderMessage is the structured error.message from the response body, if any.
	ProviderMessage string

	Err error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	case KindDecode:
		return fmt.Sprintf("decode forecast response: %v", e.Err)
	case KindUnavailable:
		return fmt.Sprintf("weather provider unavailable: %v", e.Err)
	default:
		return fmt.Sprintf("fetch forecast: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ProviderReported reports whether the provider itself explained the failure.
func (e *FetchError) ProviderReported() bool {
	if e.Kind != KindStatus {
		return false
	}
	if e.ProviderMessage != "" {
		return true
	}
	return common.ContainsAny(e.Error(), "API")
}

// StatusMessage maps a fetch error to the text shown on the status line.
// Provider-reported errors are shown verbatim; everything else gets the generic message.
func StatusMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) && fe.ProviderReported() {
		return fe.Error()
	}
	return GenericFetchMessage
}
