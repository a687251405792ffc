package crmapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse marks a 2xx response whose body does not match the
// endpoint schema.
var ErrMalformedResponse = errors.New("malformed response")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network failure: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatus maps transport failures to a gateway error.
func (e *NetworkError) HTTPStatus() int { return http.StatusBadGateway }

// ServiceError is a non-2xx response, or a 2xx response with an invalid body.
type ServiceError struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the remote service's own message, verbatim, when it sent one.
	Message string
	Body    []byte
	Err     error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// UserMessage returns the remote message for display.
func (e *ServiceError) UserMessage() string { return e.Message }

// HTTPStatus returns the status the dashboard should answer with. Remote
// client errors pass through; anything else becomes a gateway error.
func (e *ServiceError) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

// InvalidIDError rejects a record id that cannot be sent as one path segment.
// No request is made.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string { return fmt.Sprintf("invalid record id %q", e.ID) }

func (e *InvalidIDError) UserMessage() string { return "Invalid record id." }

func (e *InvalidIDError) HTTPStatus() int { return http.StatusBadRequest }
