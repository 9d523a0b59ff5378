// Package flow implements the relay pipeline against the hosted Langflow API:
// payload normalization, the upstream call with its retry and classification
// policy, and envelope unwrapping.
package flow

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a relay failure class.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeMissingPartNumber   Code = "MISSING_PART_NUMBER"
	CodeTokenNotConfigured  Code = "TOKEN_NOT_CONFIGURED"
	CodeUpstreamTimeout     Code = "UPSTREAM_TIMEOUT"
	CodeQueryTooLarge       Code = "QUERY_TOO_LARGE"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamMalformed   Code = "UPSTREAM_MALFORMED"
	CodeUpstreamError       Code = "UPSTREAM_ERROR"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// RelayError is the classified form every pipeline failure is converted to at
// the invoker boundary. Nothing escapes the pipeline unclassified.
type RelayError struct {
	Code      Code
	Status    int
	Message   string
	Retryable bool
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error [%s]: %s", e.Code, e.Message)
}

// AsRelayError returns the classified form of err, falling back to an
// internal 500 for anything that slipped through unclassified.
func AsRelayError(err error) *RelayError {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr
	}
	return &RelayError{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}
}

func NewValidationError(message string) *RelayError {
	return &RelayError{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

func NewMissingPartNumberError() *RelayError {
	return &RelayError{
		Code:    CodeMissingPartNumber,
		Status:  http.StatusBadRequest,
		Message: "no part number found in message; include one like PA-12345",
	}
}

func NewTokenNotConfiguredError() *RelayError {
	return &RelayError{
		Code:    CodeTokenNotConfigured,
		Status:  http.StatusInternalServerError,
		Message: "application token is not configured",
	}
}

func NewUpstreamTimeoutError(attempts int) *RelayError {
	return &RelayError{
		Code:    CodeUpstreamTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: fmt.Sprintf("upstream timed out after %d attempts", attempts),
	}
}

func NewQueryTooLargeError() *RelayError {
	return &RelayError{
		Code:    CodeQueryTooLarge,
		Status:  http.StatusRequestEntityTooLarge,
		Message: "query exceeds the upstream model's context length; shorten it and try again",
	}
}

func NewUpstreamUnavailableError(err error) *RelayError {
	return &RelayError{
		Code:    CodeUpstreamUnavailable,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("upstream unreachable: %v", err),
	}
}

func NewUpstreamMalformedError(err error) *RelayError {
	return &RelayError{
		Code:    CodeUpstreamMalformed,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("invalid upstream response: %v", err),
	}
}

func NewUpstreamStatusError(statusCode int, body string) *RelayError {
	return &RelayError{
		Code:    CodeUpstreamError,
		Status:  statusCode,
		Message: fmt.Sprintf("upstream returned status %d: %s", statusCode, body),
	}
}
