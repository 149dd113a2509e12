package rpc

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
)

type recordAuditRequest struct {
	AgentID      *uint64        `json:"agent_id"`
	Action       string         `json:"action" validate:"required"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address" validate:"omitempty,ip"`
	UserAgent    string         `json:"user_agent"`
	Details      map[string]any `json:"details"`
	Success      bool           `json:"success"`
	SessionKey   string         `json:"session_key"`
}

// RecordAudit appends one audit entry on behalf of the web layer. The write
// is synchronous so the caller knows it landed.
func (s *Service) RecordAudit(c *fiber.Ctx) error {
	var in recordAuditRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	err := s.recorder.Record(audit.Event{
		AgentID:      in.AgentID,
		Action:       in.Action,
		ResourceType: in.ResourceType,
		ResourceID:   in.ResourceID,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		Details:      in.Details,
		Success:      in.Success,
		SessionKey:   in.SessionKey,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recorded": true})
}

// DetectSuspicious runs the suspicious-activity heuristics.
// Query: agent_id (optional), window_days (default 7).
func (s *Service) DetectSuspicious(c *fiber.Ctx) error {
	windowDays := c.QueryInt("window_days", 7)

	var agentID *uint64
	if raw := c.Query("agent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, err)
		}
		agentID = &id
	}

	findings, err := s.recorder.DetectSuspiciousActivity(agentID, windowDays)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"findings": findings})
}

// AuditReport aggregates audit activity over a date range.
// Query: start, end (RFC 3339 or YYYY-MM-DD), agent_id, actions (comma list).
func (s *Service) AuditReport(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start"), time.Now().AddDate(0, 0, -30))
	if err != nil {
		return badRequest(c, err)
	}

	end, err := parseDate(c.Query("end"), time.Now())
	if err != nil {
		return badRequest(c, err)
	}

	var agentID *uint64
	if raw := c.Query("agent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, err)
		}
		agentID = &id
	}

	var actions []string
	if raw := c.Query("actions"); raw != "" {
		actions = strings.Split(raw, ",")
	}

	report, err := s.recorder.GenerateReport(start, end, agentID, actions)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(report)
}

func parseDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", raw)
}
