package models

import "time"

// AgentRole links an agent to a role, carrying activation state and
// provenance. Revocation flips Active to NULL instead of deleting the row, so
// assignment history is retained for audit purposes.
//
// Active is a *bool holding either true or NULL (never false): the composite
// unique index on (agent_id, role_id, active) then guarantees at most one
// active assignment per (agent, role) pair at the store level, while any
// number of revoked rows can coexist because NULL values do not collide in
// unique indexes.
type AgentRole struct {
	// ID is the unique identifier for the assignment.
	ID uint64 `gorm:"primaryKey"`
	// AgentID is the agent holding the role.
	AgentID uint64 `gorm:"column:agent_id;not null;uniqueIndex:idx_agent_role_active"`
	// Agent is the associated agent.
	Agent Agent `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	// RoleID is the assigned role.
	RoleID uint `gorm:"column:role_id;not null;uniqueIndex:idx_agent_role_active"`
	// Role is the associated role.
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// AssignedByID is the agent who granted the role (nil for system grants).
	AssignedByID *uint64 `gorm:"column:assigned_by_id"`
	// AssignedAt is the timestamp of the assignment.
	AssignedAt time.Time `gorm:"autoCreateTime"`
	// Active is true while the assignment holds and NULL once revoked.
	Active *bool `gorm:"uniqueIndex:idx_agent_role_active"`
	// RevokedAt is the timestamp of the revocation, nil while active.
	RevokedAt *time.Time
	// RevokedByID is the agent who revoked the role, nil while active.
	RevokedByID *uint64 `gorm:"column:revoked_by_id"`
}

// TableName specifies the database table name for the AgentRole model.
// This overrides GORM's default pluralized table naming.
func (AgentRole) TableName() string {
	return "agent_roles"
}

// IsActive reports whether the assignment currently holds.
func (ar *AgentRole) IsActive() bool {
	return ar.Active != nil && *ar.Active
}

// ActiveMarker returns the value stored in the Active column for a live
// assignment.
func ActiveMarker() *bool {
	v := true
	return &v
}
