package guard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// principalKey is the fiber.Locals key the authenticated principal is stored
// under.
const principalKey = "Principal"

// SetPrincipal stores the resolved principal on the request.
func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(principalKey, p)
}

// CurrentPrincipal returns the principal resolved for the request, Anonymous
// when none was set.
func CurrentPrincipal(c *fiber.Ctx) Principal {
	if p, ok := c.Locals(principalKey).(Principal); ok && p != nil {
		return p
	}

	return Anonymous{}
}

// RequireConfig configures the Require middleware.
type RequireConfig struct {
	// Recorder receives access-denied events; nil disables reporting.
	Recorder *audit.Recorder
	// LoginURL, when set, turns unauthenticated denials into a redirect
	// instead of a 401 response.
	LoginURL string
}

// Require wraps a route with a guard. Unauthenticated callers get a 401 (or a
// redirect to cfg.LoginURL); forbidden callers get a 403. Denials are
// reported to the audit recorder.
func Require(g Guard, cfg RequireConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := CurrentPrincipal(c)

		decision := g.Authorize(c.UserContext(), p)
		if decision.Allowed() {
			return c.Next()
		}

		reportDenial(cfg.Recorder, c, p, decision)

		if decision.Effect == DenyUnauthenticated {
			if cfg.LoginURL != "" {
				return c.Redirect(cfg.LoginURL)
			}

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": decision.Reason,
			})
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": decision.Reason,
		})
	}
}

func reportDenial(recorder *audit.Recorder, c *fiber.Ctx, p Principal, decision Decision) {
	if recorder == nil {
		return
	}

	var agentID *uint64
	if caller, ok := p.(Authenticated); ok {
		agentID = &caller.AgentID
	}

	recorder.Submit(audit.Event{
		AgentID:      agentID,
		Action:       models.ActionAccessDenied,
		ResourceType: "route",
		ResourceID:   c.Path(),
		IPAddress:    c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		Details:      map[string]any{"reason": decision.Reason},
		Success:      false,
	})
}
