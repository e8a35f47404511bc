package config

import "errors"

var (
	// ErrInvalidConfig marks a loaded configuration that fails Validate.
	ErrInvalidConfig = errors.New("gazeboard config rejected")
	// ErrLoadConfig marks a config file or GAZE_ environment that cannot be read.
	ErrLoadConfig = errors.New("gazeboard config unreadable")
)
