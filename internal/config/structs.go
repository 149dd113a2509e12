package config

import (
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/logger"
)

// Session timeout bounds in minutes. Timeouts outside this range are rejected
// both here and on the RPC surface.
const (
	MinSessionTimeoutMinutes = 30
	MaxSessionTimeoutMinutes = 1440
)

// Session holds the session-manager settings.
type Session struct {
	// DefaultTimeoutMinutes applies when an agent has no per-agent security
	// settings with its own timeout.
	DefaultTimeoutMinutes int
}

// Audit holds the audit-recorder settings.
type Audit struct {
	RetentionDays    int
	CleanupBatchSize int
	// OutboxSize is the capacity of the in-process audit outbox buffer.
	OutboxSize int
	// KeepCritical retains security-critical entries during cleanup
	// regardless of age.
	KeepCritical bool
}

// Config overall data structure.
type Config struct {
	DevMode bool // enable dev mode for development
	DB      DB
	Log     logger.Log
	Server  Server
	Session Session
	Audit   Audit
}

// Server implements the internal RPC server settings.
type Server struct {
	Host         string // listen host
	Port         int    // listening port
	ShutDownTime int    // wait time for shutdown in seconds
}
