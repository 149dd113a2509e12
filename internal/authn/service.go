// Package authn implements the authentication service: login with lockout,
// logout, the password lifecycle and TOTP two-factor authentication.
//
// Password changes and resets unconditionally terminate the agent's other
// sessions; a credential change always invalidates every login that predates
// it.
package authn

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

// Service authenticates agents and manages their credentials.
type Service struct {
	db       *gorm.DB
	sessions *session.Manager
	recorder *audit.Recorder
}

// NewService creates a Service. recorder may be nil, in which case
// authentication events are not audited.
func NewService(database *gorm.DB, sessions *session.Manager, recorder *audit.Recorder) *Service {
	return &Service{db: database, sessions: sessions, recorder: recorder}
}

// Status is the authentication state of an agent account.
type Status struct {
	// Active indicates the account exists and is enabled.
	Active bool `json:"active"`
	// Locked indicates the account is currently locked out.
	Locked bool `json:"locked"`
	// LockedUntil is the lockout expiry, nil when not locked.
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// Authenticate reports the account status of agentID.
func (s *Service) Authenticate(agentID uint64) (*Status, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var agent models.Agent
	if err := s.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	status := &Status{Active: agent.Active}

	var settings models.SecuritySettings
	err := s.db.Where("agent_id = ?", agentID).First(&settings).Error
	if err == nil && settings.IsLocked() {
		status.Locked = true
		status.LockedUntil = settings.LockedUntil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return status, nil
}

// LoginResult is the outcome of a successful first login factor.
type LoginResult struct {
	// Agent is the authenticated agent.
	Agent *models.Agent
	// Session is the opened session; nil while a second factor is pending.
	Session *models.Session
	// RequiresTwoFactor indicates a TOTP code must be presented via
	// LoginTwoFactor before a session is opened.
	RequiresTwoFactor bool
}

// Login verifies email and password and opens a session. After
// models.MaxLoginAttempts consecutive failures the account locks for
// models.DefaultLockMinutes. When two-factor authentication is enabled no
// session is opened; the caller must complete LoginTwoFactor.
func (s *Service) Login(email, password string, deviceCtx session.DeviceContext) (*LoginResult, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var agent models.Agent
	if err := s.db.Where("email = ?", email).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.auditLogin(nil, deviceCtx, false, map[string]any{"email": email, "reason": "unknown email"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !agent.Active {
		s.auditLogin(&agent.ID, deviceCtx, false, map[string]any{"reason": "inactive account"})
		return nil, ErrAgentInactive
	}

	settings, err := s.ensureSettings(agent.ID)
	if err != nil {
		return nil, err
	}

	if settings.IsLocked() {
		s.auditLogin(&agent.ID, deviceCtx, false, map[string]any{"reason": "account locked"})
		return nil, ErrAccountLocked
	}

	if !agent.VerifyPassword(password) {
		return nil, s.failLogin(&agent, settings, deviceCtx)
	}

	// Successful first factor clears the failure counter and any stale lock.
	if settings.LoginAttempts != 0 || settings.LockedUntil != nil {
		err = s.db.Model(settings).Updates(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
		}).Error
		if err != nil {
			return nil, err
		}
	}

	if settings.TwoFactorEnabled {
		return &LoginResult{Agent: &agent, RequiresTwoFactor: true}, nil
	}

	return s.openSession(&agent, deviceCtx)
}

// LoginTwoFactor completes a two-factor login with a TOTP or backup code.
func (s *Service) LoginTwoFactor(agentID uint64, code string, deviceCtx session.DeviceContext) (*LoginResult, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var agent models.Agent
	if err := s.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	if err := s.VerifyTwoFactor(agentID, code); err != nil {
		s.auditLogin(&agent.ID, deviceCtx, false, map[string]any{"reason": "invalid two-factor code"})
		return nil, err
	}

	return s.openSession(&agent, deviceCtx)
}

// Logout terminates the session behind token.
func (s *Service) Logout(token string) error {
	sess, err := s.sessions.SessionInfo(token)
	if err != nil {
		return err
	}

	if err := s.sessions.Terminate(token, models.TerminationUserLogout); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID:    &sess.AgentID,
			Action:     models.ActionLogout,
			IPAddress:  sess.IPAddress,
			Success:    true,
			SessionKey: token,
		})
	}

	return nil
}

// ChangePassword verifies the current password, stores the new hash and
// terminates every other session of the agent. exceptToken keeps the session
// performing the change alive.
func (s *Service) ChangePassword(agentID uint64, current, newPassword, exceptToken string) error {
	if s.db == nil {
		return ErrDBNil
	}

	var agent models.Agent
	if err := s.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgentNotFound
		}
		return err
	}

	if !agent.VerifyPassword(current) {
		return ErrInvalidCredentials
	}

	if err := s.storePassword(&agent, newPassword, false); err != nil {
		return err
	}

	if _, err := s.sessions.TerminateAll(agentID, exceptToken, models.TerminationSecurityReset); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID: &agentID,
			Action:  models.ActionPasswordChange,
			Success: true,
		})
	}

	return nil
}

// ResetPassword sets a new password without checking the old one, for the
// administrative reset path. Every session of the agent is terminated and a
// password change is required on next login.
func (s *Service) ResetPassword(agentID uint64, newPassword string, resetBy *uint64) error {
	if s.db == nil {
		return ErrDBNil
	}

	var agent models.Agent
	if err := s.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgentNotFound
		}
		return err
	}

	if err := s.storePassword(&agent, newPassword, true); err != nil {
		return err
	}

	if _, err := s.sessions.TerminateAll(agentID, "", models.TerminationSecurityReset); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID: resetBy,
			Action:  models.ActionPasswordReset,
			Details: map[string]any{"target_agent_id": agentID},
			Success: true,
		})
	}

	return nil
}

// Unlock clears the lockout state of agentID ahead of its expiry.
func (s *Service) Unlock(agentID uint64, unlockedBy *uint64) error {
	settings, err := s.ensureSettings(agentID)
	if err != nil {
		return err
	}

	err = s.db.Model(settings).Updates(map[string]any{
		"login_attempts": 0,
		"locked_until":   nil,
	}).Error
	if err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID: unlockedBy,
			Action:  models.ActionAccountUnlocked,
			Details: map[string]any{"target_agent_id": agentID},
			Success: true,
		})
	}

	return nil
}

func (s *Service) openSession(agent *models.Agent, deviceCtx session.DeviceContext) (*LoginResult, error) {
	sess, err := s.sessions.Create(agent.ID, deviceCtx, 0)
	if err != nil {
		return nil, err
	}

	s.auditLogin(&agent.ID, deviceCtx, true, nil)

	return &LoginResult{Agent: agent, Session: sess}, nil
}

// failLogin counts a failed attempt, locking the account at the threshold.
// Always returns ErrInvalidCredentials.
func (s *Service) failLogin(agent *models.Agent, settings *models.SecuritySettings, deviceCtx session.DeviceContext) error {
	attempts := settings.LoginAttempts + 1
	updates := map[string]any{"login_attempts": attempts}

	locked := attempts >= models.MaxLoginAttempts
	if locked {
		until := time.Now().Add(models.DefaultLockMinutes * time.Minute)
		updates["locked_until"] = until
	}

	if err := s.db.Model(settings).Updates(updates).Error; err != nil {
		return err
	}

	s.auditLogin(&agent.ID, deviceCtx, false, map[string]any{
		"reason":   "wrong password",
		"attempts": attempts,
	})

	if locked && s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID:   &agent.ID,
			Action:    models.ActionAccountLocked,
			IPAddress: deviceCtx.IPAddress,
			Details:   map[string]any{"attempts": attempts},
			Success:   true,
		})
	}

	return ErrInvalidCredentials
}

func (s *Service) storePassword(agent *models.Agent, newPassword string, requireChange bool) error {
	if err := s.db.Model(agent).Update("password", models.HashPassword(newPassword)).Error; err != nil {
		return err
	}

	settings, err := s.ensureSettings(agent.ID)
	if err != nil {
		return err
	}

	now := time.Now()

	return s.db.Model(settings).Updates(map[string]any{
		"password_changed_at":     now,
		"require_password_change": requireChange,
	}).Error
}

// ensureSettings returns the agent's security settings, creating the default
// row on first use.
func (s *Service) ensureSettings(agentID uint64) (*models.SecuritySettings, error) {
	var settings models.SecuritySettings

	err := s.db.Where("agent_id = ?", agentID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.SecuritySettings{
		AgentID:               agentID,
		SessionTimeoutMinutes: models.DefaultSessionTimeoutMinutes,
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *Service) auditLogin(agentID *uint64, deviceCtx session.DeviceContext, success bool, details map[string]any) {
	if s.recorder == nil {
		return
	}

	s.recorder.Submit(audit.Event{
		AgentID:   agentID,
		Action:    models.ActionLogin,
		IPAddress: deviceCtx.IPAddress,
		UserAgent: deviceCtx.UserAgent,
		Details:   details,
		Success:   success,
	})
}
