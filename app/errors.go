package app

import "errors"

var (
	// ErrExtraction wraps every failure to turn an input into notes.
	ErrExtraction       = errors.New("note extraction failed")
	ErrUnsupportedInput = errors.New("unsupported input")
	ErrNotReady         = errors.New("no track loaded")
)
