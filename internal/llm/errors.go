package llm

import "errors"

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("llm client not configured")

	// ErrUnavailable indicates the upstream API could not be reached.
	ErrUnavailable = errors.New("llm api unavailable")

	// ErrTimeout indicates the call exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrUpstreamStatus wraps a non-200 response from the API.
	ErrUpstreamStatus = errors.New("llm api returned an error status")

	// ErrStreamFailed indicates the event stream broke or carried an error event.
	ErrStreamFailed = errors.New("llm stream failed")
)
