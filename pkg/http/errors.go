package http

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRequest is returned when a nil *RawRequest is passed in.
	ErrNilRequest = errors.New("http: nil request")

	// ErrInvalidURL is matched by errors.Is for every *URLError.
	ErrInvalidURL = errors.New("http: invalid request URL")

	// ErrBodyRead wraps failures of the body stream other than EOF.
	ErrBodyRead = errors.New("http: reading request body")

	// ErrBodyDecode wraps content decoding failures. It only ever appears in
	// DecodedBody.Err.
	ErrBodyDecode = errors.New("http: decoding request body")
)

// URLError reports a request URL that could not be parsed.
type URLError struct {
	URL string // the request URL as received
	Err error  // underlying parse error
}

// Error implements the error interface.
func (e *URLError) Error() string {
	return fmt.Sprintf("http: invalid request URL %q: %v", e.URL, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *URLError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidURL) true for any *URLError.
func (e *URLError) Is(target error) bool { return target == ErrInvalidURL }

// ParseError represents an error that occurred while decoding a wire-format
// HTTP request.
type ParseError struct {
	Message string // human-readable error message
	Line    int    // 1-indexed line number where error occurred (0 if unknown)
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("http: parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("http: %s", e.Message)
}

func newParseError(msg string, line int) *ParseError {
	return &ParseError{Message: msg, Line: line}
}
