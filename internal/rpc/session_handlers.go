package rpc

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

type createSessionRequest struct {
	AgentID        uint64 `json:"agent_id" validate:"required"`
	IPAddress      string `json:"ip_address" validate:"omitempty,ip"`
	UserAgent      string `json:"user_agent"`
	TimeoutMinutes int    `json:"timeout_minutes" validate:"omitempty,min=30,max=1440"`
}

// CreateSession opens a session for an agent.
func (s *Service) CreateSession(c *fiber.Ctx) error {
	var in createSessionRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	sess, err := s.sessions.Create(in.AgentID, session.DeviceContext{
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}, in.TimeoutMinutes)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      sess.SessionKey,
		"expires_at": sess.ExpiresAt,
	})
}

type extendSessionRequest struct {
	Token   string `json:"token" validate:"required"`
	Minutes int    `json:"minutes" validate:"required,min=1"`
}

// ExtendSession pushes the expiry of a live session forward.
func (s *Service) ExtendSession(c *fiber.Ctx) error {
	var in extendSessionRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	sess, err := s.sessions.Extend(in.Token, in.Minutes)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"expires_at": sess.ExpiresAt})
}

type terminateSessionRequest struct {
	Token  string `json:"token" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,oneof=user_logout admin_action security_reset expired user_terminated_specific terminate_all_sessions"`
}

// TerminateSession closes a live session.
func (s *Service) TerminateSession(c *fiber.Ctx) error {
	var in terminateSessionRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	if err := s.sessions.Terminate(in.Token, in.Reason); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"terminated": true})
}

type terminateAllRequest struct {
	AgentID     uint64 `json:"agent_id" validate:"required"`
	ExceptToken string `json:"except_token"`
	Reason      string `json:"reason" validate:"omitempty,oneof=user_logout admin_action security_reset expired user_terminated_specific terminate_all_sessions"`
}

// TerminateAllSessions closes every live session of an agent.
func (s *Service) TerminateAllSessions(c *fiber.Ctx) error {
	var in terminateAllRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	closed, err := s.sessions.TerminateAll(in.AgentID, in.ExceptToken, in.Reason)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"terminated": closed})
}

// ActiveSessions lists the live sessions of an agent.
func (s *Service) ActiveSessions(c *fiber.Ctx) error {
	agentID, err := strconv.ParseUint(c.Params("agentID"), 10, 64)
	if err != nil {
		return badRequest(c, err)
	}

	sessions, err := s.sessions.ActiveSessions(agentID)
	if err != nil {
		return fail(c, err)
	}

	out := make([]fiber.Map, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, fiber.Map{
			"token":         sess.SessionKey,
			"ip_address":    sess.IPAddress,
			"device_info":   sess.DeviceInfo,
			"location":      sess.Location,
			"created_at":    sess.CreatedAt,
			"last_activity": sess.LastActivity,
			"expires_at":    sess.ExpiresAt,
		})
	}

	return c.JSON(fiber.Map{"sessions": out})
}
