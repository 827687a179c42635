package utils

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() error {
	return e.code
}

// Message is the text without the wrapped cause, safe to hand to clients
// for non-internal codes.
func (e *Error) Message() string {
	return e.msg
}

func WrapErrorf(orig error, code error, format string, a ...any) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

// ErrorCode returns the sentinel code carried by err, or ErrInternalServerError
// when err was not produced by WrapErrorf.
func ErrorCode(err error) error {
	var ierr *Error
	if errors.As(err, &ierr) && ierr.code != nil {
		return ierr.code
	}
	return ErrInternalServerError
}

var (
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("your requested item is not found")
	ErrBadParamInput       = errors.New("given param is not valid")
)
