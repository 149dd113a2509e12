package models

import "time"

// System role names seeded at install time. Guards and the evaluator refer to
// roles by these names.
const (
	// RoleAdministrator has every permission in the system.
	RoleAdministrator = "Administrador"
	// RoleSupervisor supervises agents and can view reports.
	RoleSupervisor = "Supervisor"
	// RoleBasicAgent is the default role for real-estate agents.
	RoleBasicAgent = "Agente Básico"
)

// Role represents a role in the role-based access control (RBAC) system.
// Roles are non-hierarchical bundles of permissions assignable to agents.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique display label of the role.
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystemRole indicates a system role that cannot be deleted.
	IsSystemRole bool `gorm:"default:false"`
	// Permissions are the permissions granted by this role.
	Permissions []Permission `gorm:"many2many:role_permissions"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
