package authz

import "errors"

var (
	// ErrAgentNotFound is returned when the agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAlreadyAssigned is returned when the agent already holds an active
	// assignment of the role.
	ErrAlreadyAssigned = errors.New("role already assigned to agent")

	// ErrAssignmentNotFound is returned when no active assignment exists to revoke.
	ErrAssignmentNotFound = errors.New("active role assignment not found")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
