package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is wrapped by errors raised when input ends inside
	// an unterminated block.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrStalled is wrapped by errors raised when a scope stops making
	// progress through its token stream.
	ErrStalled = errors.New("grammar stalled")
)

// CompilationError is the only error kind the compiler raises. Offset is an
// absolute index into the source handed to Generate or Compile.
type CompilationError struct {
	Msg    string
	Offset int
	err    error
}

func (e *CompilationError) Error() string {
	return e.Msg
}

func (e *CompilationError) Unwrap() error {
	return e.err
}

func newError(offset int, format string, args ...interface{}) *CompilationError {
	return &CompilationError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}

func wrapError(offset int, sentinel error, format string, args ...interface{}) *CompilationError {
	e := newError(offset, format, args...)
	e.err = sentinel
	return e
}
