package models

import "time"

// Permission represents an atomic capability in the authorization system.
// Permissions are never composed of other permissions; they are granted to
// roles, which are then assigned to agents.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Codename is the unique capability key (e.g. "view_property").
	Codename string `gorm:"unique;size:100;not null"`
	// Name is the human-readable permission name.
	Name string `gorm:"size:255;not null"`
	// Resource is the resource kind this permission applies to
	// (e.g. "property", "contract", "report").
	Resource string `gorm:"size:100;not null"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
