package ankiconnect

import (
	"errors"
	"fmt"
)

// APIError is an error reported by AnkiConnect in the response envelope
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ankiconnect %s: %s", e.Action, e.Message)
}

// TransportError means the request never produced a usable response:
// connection refused, timeout, bad status, undecodable body or an open
// circuit breaker.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ankiconnect %s: transport failure: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPI reports whether err was returned by AnkiConnect itself
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
