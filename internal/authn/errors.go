package authn

import "errors"

var (
	// ErrInvalidCredentials is returned on a wrong email or password. The two
	// cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned while the account is locked out after too
	// many failed logins.
	ErrAccountLocked = errors.New("account is temporarily locked")

	// ErrAgentNotFound is returned when the agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentInactive is returned when the agent account is deactivated.
	ErrAgentInactive = errors.New("agent account is inactive")

	// ErrTwoFactorNotEnabled is returned when a 2FA operation targets an agent
	// without two-factor authentication.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")

	// ErrInvalidTwoFactorCode is returned when neither the TOTP code nor a
	// backup code matches.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
