package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call to a collaborator service
type Kind string

const (
	KindNetwork   Kind = "network_failure"
	KindUpstream  Kind = "upstream_error"
	KindMalformed Kind = "malformed_response"
)

var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrUpstream          = errors.New("upstream error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrCircuitOpen       = errors.New("circuit open")
)

// Error is returned by every fetch in this package
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetworkFailure:
		return e.Kind == KindNetwork
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	}
	return false
}

func networkError(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func upstreamError(op string, status int, body string) error {
	return &Error{Kind: KindUpstream, Op: op, StatusCode: status, Err: errors.New(body)}
}

func malformedError(op string, err error) error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}

// UpstreamFailure wraps err from a non-HTTP listings backend as an upstream error
func UpstreamFailure(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// MalformedFailure wraps a decode/validation error from a non-HTTP backend
func MalformedFailure(op string, err error) error {
	return malformedError(op, err)
}
