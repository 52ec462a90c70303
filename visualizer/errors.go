package visualizer

import "errors"

var (
	ErrInvalidSettings    = errors.New("invalid visualizer settings")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrSurfaceNotReady    = errors.New("surface not ready")
)
