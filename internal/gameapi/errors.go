package gameapi

import "fmt"

type staticErr string

func (e staticErr) Error() string { return string(e) }

// Failure kinds, matched with errors.Is.
var (
	ErrConnectionFailure error = staticErr("connection failure")
	ErrActionRejected    error = staticErr("action rejected")
	ErrDecodeFailure     error = staticErr("decode failure")
)

// Error carries the failure kind, the operation and the user-facing reason.
type Error struct {
	Kind   error
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func connErr(op string, err error) *Error {
	return &Error{Kind: ErrConnectionFailure, Op: op, Reason: fmt.Sprintf("connection error (%s): %v", op, err), Err: err}
}

func statusErr(op string, status int) *Error {
	return &Error{Kind: ErrConnectionFailure, Op: op, Reason: fmt.Sprintf("HTTP error: %d", status)}
}

func decodeErr(op string, err error) *Error {
	return &Error{Kind: ErrDecodeFailure, Op: op, Reason: fmt.Sprintf("decode error (%s): %v", op, err), Err: err}
}

func rejectedErr(op, reason string) *Error {
	if reason == "" {
		reason = "unknown error"
	}
	return &Error{Kind: ErrActionRejected, Op: op, Reason: reason}
}
