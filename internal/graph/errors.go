package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth indicates the token endpoint refused the client credentials or
	// answered with a body that carried no access token.
	ErrAuth = errors.New("graph: authentication failed")

	// ErrRequest indicates a mailbox call did not complete with a 2xx status.
	ErrRequest = errors.New("graph: request failed")
)

// RequestError describes a failed mailbox call. It matches ErrRequest.
type RequestError struct {
	// Op is the client operation that issued the call, e.g. "mark_read".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Code and Message come from the Graph error envelope when present.
	Code    string
	Message string

	// Err is the transport or decoding failure, if any.
	Err error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("graph %s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("graph %s (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	case e.Code != "":
		return fmt.Sprintf("graph %s (HTTP %d): %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("graph %s (HTTP %d): %s", e.Op, e.StatusCode, e.Message)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRequest.
func (e *RequestError) Is(target error) bool { return target == ErrRequest }

// withAuthFailure attaches a token failure to the error of the call that was
// issued without a token, so the result matches both ErrAuth and ErrRequest.
func withAuthFailure(tokenErr, err error) error {
	if tokenErr == nil {
		return err
	}
	return errors.Join(tokenErr, err)
}
