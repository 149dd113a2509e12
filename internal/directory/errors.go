package directory

import "errors"

var (
	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleExists is returned when attempting to create a role whose name is taken.
	ErrRoleExists = errors.New("role with this name already exists")

	// ErrRoleNameEmpty is returned when attempting to create a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")

	// ErrSystemRole is returned when attempting to delete a system role.
	ErrSystemRole = errors.New("system roles cannot be deleted")

	// ErrPermissionNotFound is returned when a permission cannot be found.
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrPermissionExists is returned when attempting to create a permission whose codename is taken.
	ErrPermissionExists = errors.New("permission with this codename already exists")

	// ErrCodenameEmpty is returned when attempting to create a permission with an empty codename.
	ErrCodenameEmpty = errors.New("permission codename cannot be empty")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
