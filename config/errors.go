package config

import "errors"

var (
	ErrInvalidMode   = errors.New("invalid mode")
	ErrInvalidConfig = errors.New("invalid config")
)
