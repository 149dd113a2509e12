package authz

import (
	"github.com/rs/zerolog/log"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// RoleMatchMode selects how CheckRole combines multiple role names.
type RoleMatchMode int

const (
	// RoleMatchAny grants when the agent holds at least one of the roles.
	RoleMatchAny RoleMatchMode = iota
	// RoleMatchAll grants only when the agent holds every role.
	RoleMatchAll
)

// CheckPermission reports whether agentID holds codename through any active
// role. Any evaluation error is answered with false.
func (e *Evaluator) CheckPermission(agentID uint64, codename string) bool {
	perms, ok := e.cache.get(agentID)
	if !ok {
		codenames, err := e.EffectivePermissions(agentID)
		if err != nil {
			log.Warn().Err(err).
				Uint64("agent_id", agentID).
				Str("permission", codename).
				Msg("permission check failed, denying")
			return false
		}

		e.cache.put(agentID, codenames)

		perms, _ = e.cache.get(agentID)
	}

	_, held := perms[codename]

	return held
}

// CheckRole reports whether agentID holds the named roles, combined per mode.
// Unknown role names simply never match. Any evaluation error is answered
// with false.
func (e *Evaluator) CheckRole(agentID uint64, roleNames []string, mode RoleMatchMode) bool {
	if len(roleNames) == 0 {
		return false
	}

	roles, err := e.AgentRoles(agentID)
	if err != nil {
		log.Warn().Err(err).
			Uint64("agent_id", agentID).
			Strs("roles", roleNames).
			Msg("role check failed, denying")
		return false
	}

	held := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		held[r.Name] = struct{}{}
	}

	matches := 0
	for _, name := range roleNames {
		if _, ok := held[name]; ok {
			matches++
		}
	}

	if mode == RoleMatchAll {
		return matches == len(roleNames)
	}

	return matches > 0
}

// EffectivePermissions returns the distinct permission codenames agentID holds
// through active role assignments.
func (e *Evaluator) EffectivePermissions(agentID uint64) ([]string, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	var codenames []string

	err := e.db.Model(&models.Permission{}).
		Distinct("permissions.codename").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN agent_roles ON agent_roles.role_id = role_permissions.role_id").
		Where("agent_roles.agent_id = ? AND agent_roles.active = ?", agentID, true).
		Order("permissions.codename").
		Pluck("permissions.codename", &codenames).Error
	if err != nil {
		return nil, err
	}

	return codenames, nil
}

// AgentRoles returns the roles agentID actively holds.
func (e *Evaluator) AgentRoles(agentID uint64) ([]models.Role, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	err := e.db.Model(&models.Role{}).
		Joins("JOIN agent_roles ON agent_roles.role_id = roles.id").
		Where("agent_roles.agent_id = ? AND agent_roles.active = ?", agentID, true).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// AgentsWithPermission returns the active agents holding codename through any
// active role.
func (e *Evaluator) AgentsWithPermission(codename string) ([]models.Agent, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	var agents []models.Agent

	err := e.db.Model(&models.Agent{}).
		Distinct("agents.*").
		Joins("JOIN agent_roles ON agent_roles.agent_id = agents.id").
		Joins("JOIN role_permissions ON role_permissions.role_id = agent_roles.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("permissions.codename = ? AND agent_roles.active = ? AND agents.active = ?",
			codename, true, true).
		Order("agents.id").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}

	return agents, nil
}
