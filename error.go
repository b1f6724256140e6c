package fetchbody

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code classifies why a body operation failed. It mirrors the error classes a
// scripting host would surface to its callers.
type Code int

const (
	CodeUnknown     Code = iota
	CodeTypeError        // unusable body, disallowed MIME type, undecodable form
	CodeSyntaxError      // malformed JSON
	CodeStreamRead       // the underlying stream failed while being read
	CodeTee              // the stream could not be teed while cloning
)

var codeNames = map[Code]string{
	CodeUnknown:     "Unknown",
	CodeTypeError:   "TypeError",
	CodeSyntaxError: "SyntaxError",
	CodeStreamRead:  "StreamReadError",
	CodeTee:         "TeeError",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}

	return fmt.Sprintf("Code(%d)", int(c))
}

var (
	// ErrUnusable is wrapped by the rejection of every consumption of a disturbed or locked body.
	ErrUnusable = errors.New("body is unusable")
	// ErrFormMIMEType is wrapped when form data is requested for a body of another MIME type.
	ErrFormMIMEType = errors.New("mime type must be 'multipart/form-data' or 'application/x-www-form-urlencoded'")
	// ErrMalformedJSON is wrapped when a body does not hold valid JSON.
	ErrMalformedJSON = errors.New("malformed json")
)

// Error describes a classified body error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.err.Error())
}

// CodeOf returns the error's code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if bodyErr, ok := asError(err); ok {
		return bodyErr.Code()
	}
	return CodeUnknown
}

// IsTypeError reports whether err is classified as [CodeTypeError].
func IsTypeError(err error) bool {
	return CodeOf(err) == CodeTypeError
}

// asError uses errors.As to unwrap any error and look for a body *Error.
func asError(err error) (*Error, bool) {
	var bodyErr *Error
	ok := errors.As(err, &bodyErr)
	return bodyErr, ok
}
