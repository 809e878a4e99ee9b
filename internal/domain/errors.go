package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrDecode     = errors.New("image decode failed")
	ErrUpstream   = errors.New("upstream service failure")
	ErrInternal   = errors.New("internal error")
)

// Error carries an error kind, a message that is safe to show to clients and
// the underlying cause. errors.Is matches both the kind and the cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Decode(err error) error {
	return &Error{Kind: ErrDecode, Message: "unreadable image", Err: err}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: ErrUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// PublicMessage returns the client-facing message of err when it is a
// validation or not-found error, and "" otherwise.
func PublicMessage(err error) string {
	var de *Error
	if !errors.As(err, &de) {
		return ""
	}
	if de.Kind == ErrValidation || de.Kind == ErrNotFound {
		return de.Message
	}
	return ""
}
