package rpc

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

type authenticateRequest struct {
	AgentID uint64 `json:"agent_id" validate:"required"`
}

// Authenticate reports the account status of an agent.
func (s *Service) Authenticate(c *fiber.Ctx) error {
	var in authenticateRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	status, err := s.auth.Authenticate(in.AgentID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(status)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and opens a session. The client address and user
// agent of the originating request are forwarded by the web layer.
func (s *Service) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	result, err := s.auth.Login(in.Email, in.Password, deviceContext(c))
	if err != nil {
		return fail(c, err)
	}

	if result.RequiresTwoFactor {
		return c.JSON(fiber.Map{
			"requires_two_factor": true,
			"agent_id":            result.Agent.ID,
		})
	}

	return c.JSON(loginResponse(result))
}

type loginTwoFactorRequest struct {
	AgentID uint64 `json:"agent_id" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

// LoginTwoFactor completes a two-factor login.
func (s *Service) LoginTwoFactor(c *fiber.Ctx) error {
	var in loginTwoFactorRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	result, err := s.auth.LoginTwoFactor(in.AgentID, in.Code, deviceContext(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(loginResponse(result))
}

type logoutRequest struct {
	Token string `json:"token" validate:"required"`
}

// Logout terminates the session behind a token.
func (s *Service) Logout(c *fiber.Ctx) error {
	var in logoutRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	if err := s.auth.Logout(in.Token); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"logged_out": true})
}

func loginResponse(result *authn.LoginResult) fiber.Map {
	return fiber.Map{
		"agent_id":   result.Agent.ID,
		"token":      result.Session.SessionKey,
		"expires_at": result.Session.ExpiresAt,
	}
}

// deviceContext forwards the caller-supplied client context, falling back to
// the direct connection data.
func deviceContext(c *fiber.Ctx) session.DeviceContext {
	ip := c.Get("X-Client-IP")
	if ip == "" {
		ip = c.IP()
	}

	ua := c.Get("X-Client-User-Agent")
	if ua == "" {
		ua = c.Get(fiber.HeaderUserAgent)
	}

	return session.DeviceContext{IPAddress: ip, UserAgent: ua}
}
