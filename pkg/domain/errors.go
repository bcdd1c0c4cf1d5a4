package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContext is returned when a submission has no non-whitespace input.
	ErrEmptyContext = errors.New("context is empty")

	// ErrNoContext is returned when regenerate is requested before any attempt.
	ErrNoContext = errors.New("no context available")

	// ErrNoResponse is returned by copy and speak when nothing has been generated.
	ErrNoResponse = errors.New("no response available")

	// ErrMalformedPayload is returned when a generation payload carries no text.
	ErrMalformedPayload = errors.New("invalid response format from API")

	// ErrUnsupportedCapability is returned when an optional facility is unavailable.
	ErrUnsupportedCapability = errors.New("capability not supported")

	// ErrInvalidTone is returned for labels outside the configured ToneSet.
	ErrInvalidTone = errors.New("invalid tone")

	// ErrInvalidTheme is returned for values other than light or dark.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrSuperseded is returned when a relay result arrives for an outdated generation.
	ErrSuperseded = errors.New("request superseded by a newer one")

	// ErrRelayUnconfigured is returned when the upstream has no API key.
	ErrRelayUnconfigured = errors.New("API key is not set")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPreferenceNotFound is returned when a preference key has never been written.
	ErrPreferenceNotFound = errors.New("preference not found")
)

// RelayError is a non-success answer from the relay endpoint or the upstream API.
type RelayError struct {
	// Status is the HTTP status of the answer.
	Status int
	// Code is the upstream error code, when one was reported.
	Code int
	// Message is the upstream message, shown verbatim to the user when present.
	Message string
	// Reason is the upstream status text (e.g. "INVALID_ARGUMENT").
	Reason string
}

func (e *RelayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("relay error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("relay error %d", e.Status)
}

// ErrorBody is the JSON error object used by the relay endpoint and the upstream API.
type ErrorBody struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// ErrorEnvelope wraps ErrorBody as {"error": {...}}.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Envelope converts the error to its wire form.
func (e *RelayError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{Error: ErrorBody{Code: e.Code, Message: e.Message, Status: e.Reason}}
}
