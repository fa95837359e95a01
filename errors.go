package main

import (
	"errors"
	"fmt"
)

// Construction failures come in two kinds and both are fatal to the whole
// invocation. A commandLineError means the argument list itself is malformed:
// an unknown option, a missing value, a number which doesn't parse. A
// semanticError means the arguments are well formed but name something which
// cannot be resolved or used: a bad IP literal, an unknown hostname, an
// unreadable key file, an unusable bind address.
//
// Transport failures during an already-constructed query are deliberately
// neither - they are rendered as query output and the run continues.

type commandLineError struct {
	msg string
}

func (t *commandLineError) Error() string {
	return t.msg
}

func cmdLineErrorf(format string, a ...interface{}) error {
	return &commandLineError{msg: fmt.Sprintf(format, a...)}
}

type semanticError struct {
	msg string
	err error // Optional underlying cause
}

func (t *semanticError) Error() string {
	if t.err != nil {
		return t.msg + ": " + t.err.Error()
	}

	return t.msg
}

func (t *semanticError) Unwrap() error {
	return t.err
}

func semanticErrorf(format string, a ...interface{}) error {
	return &semanticError{msg: fmt.Sprintf(format, a...)}
}

func wrapSemantic(err error, format string, a ...interface{}) error {
	return &semanticError{msg: fmt.Sprintf(format, a...), err: err}
}

func isCommandLineError(err error) bool {
	var cle *commandLineError
	return errors.As(err, &cle)
}
