package rpc

import "errors"

const defaultMessage = "Request failed"

// ErrRequestFailed matches every dispatcher failure via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// Error is the one failure kind the dispatcher returns. Authentication, validation,
// not-found and server faults are told apart only by Message.
type Error struct {
	Service string
	Method  string
	// Status is the HTTP status, zero when no response arrived.
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == ErrRequestFailed }

// Message extracts the user-facing text from any error returned by a dispatcher call.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Message
	}
	return err.Error()
}
