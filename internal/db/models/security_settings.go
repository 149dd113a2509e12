package models

import "time"

const (
	// MaxLoginAttempts is the number of failed logins before an account is locked.
	MaxLoginAttempts = 3
	// DefaultLockMinutes is how long an account stays locked after too many failures.
	DefaultLockMinutes = 15
	// DefaultSessionTimeoutMinutes applies when no per-agent timeout is set.
	DefaultSessionTimeoutMinutes = 480
)

// SecuritySettings holds per-agent security configuration: lockout state,
// session timeout, and two-factor authentication material.
type SecuritySettings struct {
	// ID is the unique identifier for the settings row.
	ID uint64 `gorm:"primaryKey"`
	// AgentID is the agent these settings belong to (one-to-one).
	AgentID uint64 `gorm:"column:agent_id;unique;not null"`
	// Agent is the associated agent.
	Agent Agent `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	// LoginAttempts counts consecutive failed logins.
	LoginAttempts int `gorm:"default:0"`
	// LockedUntil is the lockout expiry; nil when not locked.
	LockedUntil *time.Time
	// SessionTimeoutMinutes is the per-agent session timeout.
	SessionTimeoutMinutes int `gorm:"default:480"`
	// RequirePasswordChange forces a password change on next login.
	RequirePasswordChange bool `gorm:"default:false"`
	// PasswordChangedAt is when the password was last changed.
	PasswordChangedAt *time.Time
	// TwoFactorEnabled indicates TOTP two-factor auth is active.
	TwoFactorEnabled bool `gorm:"default:false"`
	// TwoFactorSecret is the TOTP shared secret (empty when 2FA is off).
	TwoFactorSecret string `gorm:"size:64"`
	// BackupCodes are one-time recovery codes for 2FA.
	BackupCodes []string `gorm:"serializer:json"`
	// CreatedAt is the timestamp when the settings row was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the settings row was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the SecuritySettings model.
// This overrides GORM's default pluralized table naming.
func (SecuritySettings) TableName() string {
	return "security_settings"
}

// IsLocked reports whether the account is currently locked out.
func (s *SecuritySettings) IsLocked() bool {
	return s.LockedUntil != nil && time.Now().Before(*s.LockedUntil)
}
