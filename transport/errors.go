package transport

import "errors"

var (
	ErrNoSoundFont = errors.New("no soundfont")
	ErrSynthesis   = errors.New("midi synthesis failed")
)
