package models

import "time"

// Audit actions recorded by the subsystem. The list is open: callers may
// record domain actions outside this set, but the constants below are the
// ones the detection heuristics and the retention allow-list refer to.
const (
	ActionLogin                  = "login"
	ActionLogout                 = "logout"
	ActionPasswordChange         = "password_change"
	ActionPasswordReset          = "password_reset"
	ActionProfileUpdate          = "profile_update"
	ActionRoleCreated            = "role_created"
	ActionRoleAssigned           = "role_assigned"
	ActionRoleRevoked            = "role_revoked"
	ActionPermissionCreated      = "permission_created"
	ActionSessionCreated         = "session_created"
	ActionSessionExtended        = "session_extended"
	ActionSessionTerminated      = "session_terminated"
	ActionSessionExpired         = "session_expired"
	ActionSecurityChange         = "security_settings_change"
	ActionSuspiciousActivity     = "suspicious_activity"
	ActionAccountLocked          = "account_locked"
	ActionAccountUnlocked        = "account_unlocked"
	ActionTwoFactorEnabled       = "2fa_enabled"
	ActionTwoFactorDisabled      = "2fa_disabled"
	ActionAccessDenied           = "access_denied"
)

// CriticalActions are retained by retention cleanup regardless of age.
var CriticalActions = []string{
	ActionLogin,
	ActionLogout,
	ActionPasswordChange,
	ActionPasswordReset,
	ActionTwoFactorEnabled,
	ActionTwoFactorDisabled,
	ActionAccountLocked,
	ActionAccountUnlocked,
	ActionSuspiciousActivity,
	ActionSecurityChange,
}

// AuditLog is an immutable record of an attempted or completed action.
// Entries are append-only: no code path mutates an entry after creation, and
// rows are only ever removed by retention cleanup.
type AuditLog struct {
	// ID is the unique identifier for the entry.
	ID uint64 `gorm:"primaryKey"`
	// AgentID is the acting agent; nil for system-initiated actions.
	AgentID *uint64 `gorm:"column:agent_id;index:idx_audit_agent_action"`
	// Agent is the associated agent, when any.
	Agent *Agent `gorm:"foreignKey:AgentID;constraint:OnDelete:SET NULL"`
	// Action is the recorded action key.
	Action string `gorm:"size:100;not null;index:idx_audit_agent_action,priority:2;index"`
	// ResourceType is the kind of resource affected (e.g. "role", "session").
	ResourceType string `gorm:"size:50"`
	// ResourceID identifies the affected resource, when any.
	ResourceID string `gorm:"size:64"`
	// IPAddress is the client IP the action originated from.
	IPAddress string `gorm:"size:45;index"`
	// UserAgent is the raw client user agent string.
	UserAgent string
	// Details holds structured key/value context for the action.
	Details map[string]any `gorm:"serializer:json"`
	// Success indicates whether the action succeeded. No column default: a
	// recorded false must persist as false.
	Success bool `gorm:"not null"`
	// SessionKey links the entry to the session it happened in, when any.
	SessionKey string `gorm:"size:64"`
	// CreatedAt is the timestamp when the entry was recorded (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the AuditLog model.
// This overrides GORM's default pluralized table naming.
func (AuditLog) TableName() string {
	return "audit_logs"
}
