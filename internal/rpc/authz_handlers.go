package rpc

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/guard"
)

type checkPermissionRequest struct {
	AgentID   uint64   `json:"agent_id" validate:"required"`
	Codenames []string `json:"codenames" validate:"required,min=1,dive,required"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=all any"`
}

// CheckPermission answers whether an agent holds the listed permission
// codenames.
func (s *Service) CheckPermission(c *fiber.Ctx) error {
	var in checkPermissionRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	held := 0
	for _, cn := range in.Codenames {
		if s.evaluator.CheckPermission(in.AgentID, cn) {
			held++
		}
	}

	allowed := held == len(in.Codenames)
	if in.Mode == "any" {
		allowed = held > 0
	}

	return c.JSON(fiber.Map{"allowed": allowed})
}

type checkRoleRequest struct {
	AgentID uint64   `json:"agent_id" validate:"required"`
	Roles   []string `json:"roles" validate:"required,min=1,dive,required"`
	Mode    string   `json:"mode" validate:"omitempty,oneof=all any"`
}

// CheckRole answers whether an agent holds the listed roles.
func (s *Service) CheckRole(c *fiber.Ctx) error {
	var in checkRoleRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	mode := authz.RoleMatchAny
	if in.Mode == "all" {
		mode = authz.RoleMatchAll
	}

	return c.JSON(fiber.Map{"allowed": s.evaluator.CheckRole(in.AgentID, in.Roles, mode)})
}

// EffectivePermissions lists the distinct permission codenames an agent holds.
func (s *Service) EffectivePermissions(c *fiber.Ctx) error {
	agentID, err := strconv.ParseUint(c.Params("agentID"), 10, 64)
	if err != nil {
		return badRequest(c, err)
	}

	perms, err := s.evaluator.EffectivePermissions(agentID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"permissions": perms})
}

type assignRoleRequest struct {
	AgentID uint64 `json:"agent_id" validate:"required"`
	RoleID  uint   `json:"role_id" validate:"required"`
}

// AssignRole grants a role to an agent. The acting principal is recorded as
// the assigner.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	var in assignRoleRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	assignment, err := s.evaluator.AssignRole(in.AgentID, in.RoleID, actorID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"assignment_id": assignment.ID,
		"assigned_at":   assignment.AssignedAt,
	})
}

// RevokeRole revokes an active role assignment.
func (s *Service) RevokeRole(c *fiber.Ctx) error {
	var in assignRoleRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	if err := s.evaluator.RevokeRole(in.AgentID, in.RoleID, actorID(c)); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"revoked": true})
}

type bulkAssignRequest struct {
	AgentID uint64 `json:"agent_id" validate:"required"`
	RoleIDs []uint `json:"role_ids" validate:"required,min=1"`
}

// BulkAssignRoles grants several roles, reporting the outcome per role.
func (s *Service) BulkAssignRoles(c *fiber.Ctx) error {
	var in bulkAssignRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	return c.JSON(s.evaluator.BulkAssignRoles(in.AgentID, in.RoleIDs, actorID(c)))
}

// ValidateRoleAssignment previews an assignment without mutating anything.
func (s *Service) ValidateRoleAssignment(c *fiber.Ctx) error {
	var in assignRoleRequest
	if err := s.parse(c, &in); err != nil {
		return badRequest(c, err)
	}

	result, err := s.evaluator.ValidateRoleAssignment(in.AgentID, in.RoleID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(result)
}

// actorID is the authenticated principal behind the request, nil for
// anonymous callers.
func actorID(c *fiber.Ctx) *uint64 {
	if caller, ok := guard.CurrentPrincipal(c).(guard.Authenticated); ok {
		return &caller.AgentID
	}

	return nil
}
