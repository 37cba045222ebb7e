package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway call failure.
type Kind string

const (
	// KindUnauthorized: the gateway answered 401 (bad credentials or
	// expired session).
	KindUnauthorized Kind = "unauthorized"
	// KindServerError: the gateway answered with a non-401 failure status.
	KindServerError Kind = "server_error"
	// KindNetworkError: no response was received (connection refused,
	// aborted mid-flight, or the client is offline).
	KindNetworkError Kind = "network_error"
	// KindUnknown: anything else (malformed response body, bad request
	// construction).
	KindUnknown Kind = "unknown"
)

// Failure is the typed error returned by every Client operation. Callers
// match on Kind instead of probing response objects.
type Failure struct {
	Kind    Kind
	Status  int    // HTTP status when a response was received, else 0
	Message string // server-supplied {"message": ...} payload, if any
	cause   error
}

func (f *Failure) Error() string {
	s := fmt.Sprintf("gateway: %s", f.Kind)
	if f.Status != 0 {
		s = fmt.Sprintf("%s (status %d)", s, f.Status)
	}
	if f.Message != "" {
		s = fmt.Sprintf("%s: %s", s, f.Message)
	}
	if f.cause != nil {
		s = fmt.Sprintf("%s: %v", s, f.cause)
	}
	return s
}

func (f *Failure) Unwrap() error {
	return f.cause
}

// KindOf extracts the failure kind from an error returned by a Client.
// Returns KindUnknown for errors that are not a *Failure, and the empty
// Kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// MessageOf returns the server-supplied message of a failure, or "" when
// there is none.
func MessageOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return ""
}
