package authn

import (
	"errors"

	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/uniuri"
)

const (
	totpIssuer      = "realtor-authcore"
	backupCodeCount = 10
	backupCodeLen   = 10
)

// TwoFactorSetup is the enrollment material returned when two-factor
// authentication is enabled. The secret and backup codes are shown once;
// the caller must not persist them anywhere else.
type TwoFactorSetup struct {
	// Secret is the TOTP shared secret to enroll in an authenticator app.
	Secret string `json:"secret"`
	// URL is the otpauth:// provisioning URL for QR display.
	URL string `json:"url"`
	// BackupCodes are one-time recovery codes.
	BackupCodes []string `json:"backup_codes"`
}

// EnableTwoFactor generates a TOTP secret and backup codes for agentID and
// turns two-factor authentication on.
func (s *Service) EnableTwoFactor(agentID uint64) (*TwoFactorSetup, error) {
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

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: agent.Email,
	})
	if err != nil {
		return nil, err
	}

	codes := make([]string, backupCodeCount)
	for i := range codes {
		codes[i] = uniuri.NewLen(backupCodeLen)
	}

	settings, err := s.ensureSettings(agentID)
	if err != nil {
		return nil, err
	}

	err = s.db.Model(settings).Updates(map[string]any{
		"two_factor_enabled": true,
		"two_factor_secret":  key.Secret(),
		"backup_codes":       codes,
	}).Error
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID: &agentID,
			Action:  models.ActionTwoFactorEnabled,
			Success: true,
		})
	}

	return &TwoFactorSetup{
		Secret:      key.Secret(),
		URL:         key.URL(),
		BackupCodes: codes,
	}, nil
}

// DisableTwoFactor turns two-factor authentication off and discards the
// secret and remaining backup codes.
func (s *Service) DisableTwoFactor(agentID uint64) error {
	if s.db == nil {
		return ErrDBNil
	}

	settings, err := s.ensureSettings(agentID)
	if err != nil {
		return err
	}

	if !settings.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	err = s.db.Model(settings).Updates(map[string]any{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
		"backup_codes":       nil,
	}).Error
	if err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Submit(audit.Event{
			AgentID: &agentID,
			Action:  models.ActionTwoFactorDisabled,
			Success: true,
		})
	}

	return nil
}

// VerifyTwoFactor checks a TOTP code against the agent's secret, falling back
// to the backup codes. A matching backup code is consumed.
func (s *Service) VerifyTwoFactor(agentID uint64, code string) error {
	if s.db == nil {
		return ErrDBNil
	}

	settings, err := s.ensureSettings(agentID)
	if err != nil {
		return err
	}

	if !settings.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if totp.Validate(code, settings.TwoFactorSecret) {
		return nil
	}

	for i, backup := range settings.BackupCodes {
		if backup != code {
			continue
		}

		remaining := append(
			append([]string{}, settings.BackupCodes[:i]...),
			settings.BackupCodes[i+1:]...)

		return s.db.Model(settings).Update("backup_codes", remaining).Error
	}

	return ErrInvalidTwoFactorCode
}
