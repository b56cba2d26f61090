package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call by what the admin can do about it.
type Kind string

const (
	KindAuth       Kind = "auth"       // missing or expired token: log in again
	KindNetwork    Kind = "network"    // no response reached us
	KindValidation Kind = "validation" // 4xx with a message meant for the user
	KindServer     Kind = "server"     // 5xx
	KindDecode     Kind = "decode"     // response matched none of the accepted shapes
)

const (
	msgNetwork = "No response from server. Please check your internet connection."
	msgTimeout = "Request timed out. Server may be experiencing issues."
	msgServer  = "Server error. Please try again later."
	msgAuth    = "Your session has expired. Please log in again."
)

// Error is returned for every failed upstream call.
type Error struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Action is the affordance shown next to the error: "login", "retry" or "none".
func (e *Error) Action() string {
	switch e.Kind {
	case KindAuth:
		return "login"
	case KindNetwork, KindServer, KindDecode:
		return "retry"
	default:
		return "none"
	}
}

// HTTPStatus is the status agroadmin answers with when relaying e to the browser.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// As extracts an *Error from err. Errors of any other type are reported as server errors so
// callers always have a kind and an action to show.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindServer, Message: err.Error(), Err: err}
}

// ErrNoToken is the cause of KindAuth errors raised before any request is sent.
var ErrNoToken = errors.New("no authentication token found")

func statusError(status int, serverMsg string) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		msg := serverMsg
		if msg == "" {
			msg = msgAuth
		}
		return &Error{Kind: KindAuth, Status: status, Message: msg}
	case status >= 500:
		return &Error{Kind: KindServer, Status: status, Message: msgServer}
	default:
		msg := serverMsg
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Kind: KindValidation, Status: status, Message: msg}
	}
}
