package timeline

import "errors"

var (
	// ErrMalformed is returned by analyzers when the input cannot be decoded.
	ErrMalformed = errors.New("malformed note data")
)
