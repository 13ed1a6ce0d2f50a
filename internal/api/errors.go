package api

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind string

const (
	// KindNetwork is a transport failure: the backend was never reached or the call timed out.
	KindNetwork Kind = "network"
	// KindHTTP is a non-2xx response.
	KindHTTP Kind = "http"
	// KindApplication is a 2xx response whose body carries an error or success=false.
	KindApplication Kind = "application"
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode Kind = "decode"
)

// ConnectivityMessage is shown for every network failure; details only go to the log.
const ConnectivityMessage = "Unable to reach the server. Please check your connection and try again."

// Error is the single failure shape every gateway call returns.
type Error struct {
	Kind    Kind
	Op      string // METHOD path
	Status  int
	Message string // server-provided text, if any
	Body    string // raw response body
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("API Error: %d (%s)", e.Status, e.Op)
	case KindApplication:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	ae, ok := AsError(err)
	return ok && ae.Kind == k
}

// UserMessage maps err to the text shown to the user: the generic connectivity
// message for network failures, server text when there is any, fallback otherwise.
func UserMessage(err error, fallback string) string {
	ae, ok := AsError(err)
	if !ok {
		return fallback
	}
	switch ae.Kind {
	case KindNetwork:
		return ConnectivityMessage
	case KindHTTP, KindApplication:
		if ae.Message != "" {
			return ae.Message
		}
	}
	return fallback
}

// BodyMessage is UserMessage but prefers the raw response body verbatim.
func BodyMessage(err error, fallback string) string {
	if ae, ok := AsError(err); ok && ae.Kind != KindNetwork && ae.Body != "" {
		return ae.Body
	}
	return UserMessage(err, fallback)
}
