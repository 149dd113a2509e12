// Package session implements the session manager: creation, extension,
// termination and expiry sweeping of server-tracked login sessions.
//
// A session moves through {active, expired, terminated}; expired and
// terminated are terminal. Termination is irreversible: there is no path that
// reactivates a closed session.
package session

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/uniuri"
)

// keyAttempts bounds the retry loop on session key collisions. With 40
// characters of entropy a single retry is already astronomically unlikely.
const keyAttempts = 5

// DeviceContext carries the client-supplied request context a session is
// created from.
type DeviceContext struct {
	IPAddress string
	UserAgent string
}

// Manager creates and transitions sessions.
type Manager struct {
	db             *gorm.DB
	recorder       *audit.Recorder
	defaultTimeout int
}

// NewManager creates a Manager. recorder may be nil, in which case session
// transitions are not audited.
func NewManager(database *gorm.DB, recorder *audit.Recorder) *Manager {
	return &Manager{
		db:             database,
		recorder:       recorder,
		defaultTimeout: models.DefaultSessionTimeoutMinutes,
	}
}

// WithDefaultTimeout overrides the fallback timeout applied when an agent has
// no per-agent setting. Out-of-range values are ignored.
func (m *Manager) WithDefaultTimeout(minutes int) *Manager {
	if minutes >= config.MinSessionTimeoutMinutes && minutes <= config.MaxSessionTimeoutMinutes {
		m.defaultTimeout = minutes
	}

	return m
}

// Create opens a session for agentID. timeoutMinutes == 0 selects the agent's
// configured timeout (falling back to the system default); an explicit value
// outside [30,1440] is rejected with ErrTimeoutOutOfRange.
func (m *Manager) Create(agentID uint64, deviceCtx DeviceContext, timeoutMinutes int) (*models.Session, error) {
	if m.db == nil {
		return nil, ErrDBNil
	}

	if timeoutMinutes != 0 &&
		(timeoutMinutes < config.MinSessionTimeoutMinutes || timeoutMinutes > config.MaxSessionTimeoutMinutes) {
		return nil, ErrTimeoutOutOfRange
	}

	var agent models.Agent
	if err := m.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	if !agent.Active {
		return nil, ErrAgentInactive
	}

	if timeoutMinutes == 0 {
		timeoutMinutes = m.agentTimeout(agentID)
	}

	now := time.Now()
	sess := &models.Session{
		AgentID:      agentID,
		IPAddress:    deviceCtx.IPAddress,
		UserAgent:    deviceCtx.UserAgent,
		DeviceInfo:   ParseDeviceInfo(deviceCtx.UserAgent),
		Location:     ClassifyIP(deviceCtx.IPAddress),
		Active:       true,
		LastActivity: now,
		ExpiresAt:    now.Add(time.Duration(timeoutMinutes) * time.Minute),
	}

	var err error
	for attempt := 0; attempt < keyAttempts; attempt++ {
		sess.SessionKey = uniuri.NewLen(uniuri.SessionKeyLen)

		err = m.db.Create(sess).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	createdSessions.Inc()
	m.auditTransition(models.ActionSessionCreated, sess, map[string]any{
		"timeout_minutes": timeoutMinutes,
		"device_type":     sess.DeviceInfo.DeviceType,
	})

	return sess, nil
}

// Extend pushes the expiry of a live session to now + minutes. The expiry
// only ever moves forward: an extension that would land before the current
// expiry leaves it unchanged.
func (m *Manager) Extend(token string, minutes int) (*models.Session, error) {
	if m.db == nil {
		return nil, ErrDBNil
	}

	if minutes <= 0 {
		return nil, ErrExtensionNotPositive
	}

	var sess models.Session

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.liveForUpdate(tx, token, &sess); err != nil {
			return err
		}

		newExpiry := time.Now().Add(time.Duration(minutes) * time.Minute)
		if !newExpiry.After(sess.ExpiresAt) {
			return nil
		}

		sess.ExpiresAt = newExpiry

		return tx.Model(&sess).Update("expires_at", newExpiry).Error
	})
	if err != nil {
		return nil, err
	}

	m.auditTransition(models.ActionSessionExtended, &sess, map[string]any{
		"minutes": minutes,
	})

	return &sess, nil
}

// Touch records activity on a live session, bumping LastActivity.
func (m *Manager) Touch(token string) error {
	if m.db == nil {
		return ErrDBNil
	}

	result := m.db.Model(&models.Session{}).
		Where("session_key = ? AND active = ? AND expires_at > ?", token, true, time.Now()).
		Update("last_activity", time.Now())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Terminate closes a live session with the given reason. Irreversible;
// returns ErrSessionNotFound when the token does not match a live session.
func (m *Manager) Terminate(token, reason string) error {
	if m.db == nil {
		return ErrDBNil
	}

	if reason == "" {
		reason = models.TerminationUserLogout
	}

	var sess models.Session

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.liveForUpdate(tx, token, &sess); err != nil {
			return err
		}

		return tx.Model(&sess).Updates(map[string]any{
			"active":             false,
			"termination_reason": reason,
		}).Error
	})
	if err != nil {
		return err
	}

	terminatedSessions.WithLabelValues(reason).Inc()
	m.auditTransition(models.ActionSessionTerminated, &sess, map[string]any{
		"reason": reason,
	})

	return nil
}

// TerminateAll closes every live session of agentID in one transaction,
// keeping exceptToken alive when non-empty. Returns the number of sessions
// closed. Unconditional: it never fails because there was nothing to close.
func (m *Manager) TerminateAll(agentID uint64, exceptToken, reason string) (int64, error) {
	if m.db == nil {
		return 0, ErrDBNil
	}

	if reason == "" {
		reason = models.TerminationAllSessions
	}

	var closed int64

	err := m.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Session{}).
			Where("agent_id = ? AND active = ?", agentID, true)
		if exceptToken != "" {
			query = query.Where("session_key <> ?", exceptToken)
		}

		result := query.Updates(map[string]any{
			"active":             false,
			"termination_reason": reason,
		})
		if result.Error != nil {
			return result.Error
		}

		closed = result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		terminatedSessions.WithLabelValues(reason).Add(float64(closed))

		if m.recorder != nil {
			m.recorder.Submit(audit.Event{
				AgentID:      &agentID,
				Action:       models.ActionSessionTerminated,
				ResourceType: "session",
				Details: map[string]any{
					"reason": reason,
					"count":  closed,
				},
				Success: true,
			})
		}
	}

	return closed, nil
}

// SweepExpired closes every session whose expiry has passed, recording the
// "expired" termination reason. Idempotent: a second sweep finds nothing.
// Safe to run concurrently with itself and with Extend/Terminate because the
// transition is a single guarded UPDATE.
func (m *Manager) SweepExpired() (int64, error) {
	if m.db == nil {
		return 0, ErrDBNil
	}

	result := m.db.Model(&models.Session{}).
		Where("active = ? AND expires_at <= ?", true, time.Now()).
		Updates(map[string]any{
			"active":             false,
			"termination_reason": models.TerminationExpired,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	swept := result.RowsAffected
	if swept > 0 {
		sweptSessions.Add(float64(swept))

		if m.recorder != nil {
			m.recorder.Submit(audit.Event{
				Action:       models.ActionSessionExpired,
				ResourceType: "session",
				Details:      map[string]any{"count": swept},
				Success:      true,
			})
		}
	}

	return swept, nil
}

// ActiveSessions returns the live sessions of agentID, most recently active
// first.
func (m *Manager) ActiveSessions(agentID uint64) ([]models.Session, error) {
	if m.db == nil {
		return nil, ErrDBNil
	}

	var sessions []models.Session

	err := m.db.Where("agent_id = ? AND active = ? AND expires_at > ?", agentID, true, time.Now()).
		Order("last_activity DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// SessionInfo returns the session matching token in any state.
func (m *Manager) SessionInfo(token string) (*models.Session, error) {
	if m.db == nil {
		return nil, ErrDBNil
	}

	var sess models.Session

	err := m.db.Where("session_key = ?", token).First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &sess, nil
}

// liveForUpdate loads the live session matching token under a row lock.
func (m *Manager) liveForUpdate(tx *gorm.DB, token string, sess *models.Session) error {
	err := db.ForUpdate(tx).
		Where("session_key = ? AND active = ? AND expires_at > ?", token, true, time.Now()).
		First(sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	return nil
}

// agentTimeout resolves the per-agent session timeout, clamped into the
// allowed range. Falls back to the system default when no settings row exists.
func (m *Manager) agentTimeout(agentID uint64) int {
	var settings models.SecuritySettings

	err := m.db.Where("agent_id = ?", agentID).First(&settings).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Uint64("agent_id", agentID).Msg("security settings lookup failed")
		}
		return m.defaultTimeout
	}

	timeout := settings.SessionTimeoutMinutes
	if timeout < config.MinSessionTimeoutMinutes {
		return config.MinSessionTimeoutMinutes
	}
	if timeout > config.MaxSessionTimeoutMinutes {
		return config.MaxSessionTimeoutMinutes
	}

	return timeout
}

// auditTransition submits a session lifecycle event.
func (m *Manager) auditTransition(action string, sess *models.Session, details map[string]any) {
	if m.recorder == nil {
		return
	}

	m.recorder.Submit(audit.Event{
		AgentID:      &sess.AgentID,
		Action:       action,
		ResourceType: "session",
		IPAddress:    sess.IPAddress,
		UserAgent:    sess.UserAgent,
		Details:      details,
		Success:      true,
		SessionKey:   sess.SessionKey,
	})
}
