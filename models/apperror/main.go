package apperror

import (
	"errors"
	"fmt"
)

/*
	Typed application errors; every pipeline stage failure carries one
	of these kinds so request handlers can expose a machine-readable
	`errorKind` next to the free-text `error` message.
*/

type Kind string

const (
	ConfigError Kind = "config"
	CacheError  Kind = "cache"
	ExecError   Kind = "exec"
	ParseError  Kind = "parse"
	StatsError  Kind = "stats"
	Internal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// Internal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}
