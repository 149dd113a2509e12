// Package main provides the entry point for the realtor back-office
// authorization core. It exposes a small internal RPC service for permission
// evaluation, session lifecycle management and audit recording, plus a set of
// scheduler-invoked maintenance commands (session sweep, audit cleanup,
// suspicious-activity detection and audit reporting). The application uses
// gorm for data persistence and zerolog for structured logging.
package main
