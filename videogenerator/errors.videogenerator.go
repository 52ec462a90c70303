package videogenerator

import "errors"

var (
	ErrNoFrames         = errors.New("no frames captured")
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrUnsupportedCodec = errors.New("unsupported video format")
)
