package config

import (
	"errors"
)

var (
	// ErrConfigNil error if a nil configuration is passed to the daemon.
	ErrConfigNil = errors.New("config is nil")

	// ErrServerPortCanNotBeZero error if config server listening port is 0.
	ErrServerPortCanNotBeZero = errors.New("toml config server.port listening port can not be 0")

	// ErrSessionTimeoutOutOfRange error if the configured default session
	// timeout is outside the allowed [30,1440] minute range.
	ErrSessionTimeoutOutOfRange = errors.New("toml config session.defaulttimeoutminutes must be between 30 and 1440")
)
