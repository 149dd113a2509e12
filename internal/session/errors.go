package session

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches the token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAgentNotFound is returned when the agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentInactive is returned when creating a session for a deactivated agent.
	ErrAgentInactive = errors.New("agent account is inactive")

	// ErrTimeoutOutOfRange is returned when a requested session timeout falls
	// outside the allowed [30,1440] minute range.
	ErrTimeoutOutOfRange = errors.New("session timeout must be between 30 and 1440 minutes")

	// ErrExtensionNotPositive is returned when extending a session by zero or
	// negative minutes.
	ErrExtensionNotPositive = errors.New("session extension must be positive")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
