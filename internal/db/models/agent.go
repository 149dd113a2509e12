package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Agent represents a real-estate agent account in the system.
// Agents are the principals of the authorization subsystem: they hold role
// assignments, own sessions and appear on audit log entries.
type Agent struct {
	// ID is the unique identifier for the agent.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the agent account is active and can log in.
	Active bool
	// FirstName is the agent's first or given name.
	FirstName string `gorm:"size:150"`
	// LastName is the agent's last or family name.
	LastName string `gorm:"size:150"`
	// Email is the unique email address used for login.
	Email string `gorm:"unique;size:255;not null"`
	// Phone is the agent's contact phone number.
	Phone string `gorm:"size:20"`
	// LicenseNumber is the agent's unique real-estate license number.
	LicenseNumber string `gorm:"unique;size:50;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// Staff indicates the agent may access back-office staff areas.
	Staff bool
	// Superuser indicates the agent bypasses all permission checks.
	Superuser bool
	// CreatedAt is the timestamp when the agent was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the agent was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// TableName specifies the database table name for the Agent model.
// This overrides GORM's default pluralized table naming.
func (Agent) TableName() string {
	return "agents"
}

// FullName returns the agent's first and last name joined.
func (a *Agent) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating agent passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the agent's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (a *Agent) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, a.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
