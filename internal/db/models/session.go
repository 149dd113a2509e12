package models

import "time"

// Session termination reasons recorded for audit.
const (
	TerminationUserLogout        = "user_logout"
	TerminationAdminAction       = "admin_action"
	TerminationSecurityReset     = "security_reset"
	TerminationExpired           = "expired"
	TerminationUserSpecific      = "user_terminated_specific"
	TerminationAllSessions       = "terminate_all_sessions"
)

// DeviceInfo is the best-effort device classification parsed from the
// client-supplied user agent string. Advisory only, never an authorization
// input.
type DeviceInfo struct {
	UserAgent  string `json:"user_agent"`
	DeviceType string `json:"device_type"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
}

// Location is the best-effort IP classification. There is no real
// geolocation: addresses are classified as local or unknown only.
type Location struct {
	IPAddress string `json:"ip_address"`
	Country   string `json:"country"`
	City      string `json:"city"`
	IsLocal   bool   `json:"is_local"`
}

// Session is a server-tracked, time-bounded authentication context for one
// login. A session is live iff Active && now < ExpiresAt.
type Session struct {
	// ID is the unique identifier for the session row.
	ID uint64 `gorm:"primaryKey"`
	// AgentID is the agent owning the session.
	AgentID uint64 `gorm:"column:agent_id;not null;index"`
	// Agent is the associated agent.
	Agent Agent `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	// SessionKey is the unique random session token.
	SessionKey string `gorm:"unique;size:64;not null"`
	// IPAddress is the client IP the session was created from.
	IPAddress string `gorm:"size:45"`
	// UserAgent is the raw client user agent string.
	UserAgent string
	// DeviceInfo is the parsed device classification.
	DeviceInfo DeviceInfo `gorm:"serializer:json"`
	// Location is the best-effort IP classification.
	Location Location `gorm:"serializer:json"`
	// Active indicates the session has not been terminated.
	Active bool `gorm:"default:true;index"`
	// TerminationReason records why the session ended, empty while active.
	TerminationReason string `gorm:"size:50"`
	// LastActivity is the timestamp of the last request seen on this session.
	LastActivity time.Time `gorm:"autoUpdateTime"`
	// ExpiresAt is the absolute expiry timestamp.
	ExpiresAt time.Time `gorm:"not null;index"`
	// CreatedAt is the timestamp when the session was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Session model.
// This overrides GORM's default pluralized table naming.
func (Session) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session expiry has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Live reports whether the session is usable: active and not expired.
func (s *Session) Live() bool {
	return s.Active && !s.IsExpired()
}
