// Package authz implements the permission evaluator: role assignment and
// revocation with store-level race protection, and the permission/role checks
// the access guards are built on.
//
// Checks are fail-closed: any infrastructure error during evaluation is logged
// and answered with a denial, never a grant.
package authz

import (
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/directory"
)

// Evaluator answers permission and role checks and mutates role assignments.
type Evaluator struct {
	db       *gorm.DB
	recorder *audit.Recorder
	cache    *permissionCache
}

// NewEvaluator creates an Evaluator. recorder may be nil, in which case
// mutations are not audited. cacheSize <= 0 selects DefaultCacheSize.
func NewEvaluator(database *gorm.DB, recorder *audit.Recorder, cacheSize int) *Evaluator {
	return &Evaluator{
		db:       database,
		recorder: recorder,
		cache:    newPermissionCache(cacheSize),
	}
}

// AssignRole grants roleID to agentID. The active assignment row is guarded
// twice: a row lock inside the transaction orders concurrent assigns, and the
// composite unique index on (agent_id, role_id, active) rejects the loser of
// any race the lock did not serialize. Returns ErrAlreadyAssigned without
// mutation when the agent already holds the role.
func (e *Evaluator) AssignRole(agentID uint64, roleID uint, assignedBy *uint64) (*models.AgentRole, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	var assignment models.AgentRole

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.First(&agent, agentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAgentNotFound
			}
			return err
		}

		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return directory.ErrRoleNotFound
			}
			return err
		}

		var existing models.AgentRole
		err := db.ForUpdate(tx).
			Where("agent_id = ? AND role_id = ? AND active = ?", agentID, roleID, true).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyAssigned
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment = models.AgentRole{
			AgentID:      agentID,
			RoleID:       roleID,
			AssignedByID: assignedBy,
			Active:       models.ActiveMarker(),
		}

		if err := tx.Create(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAssigned
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cache.invalidate(agentID)
	e.auditRoleChange(models.ActionRoleAssigned, agentID, roleID, assignedBy)

	return &assignment, nil
}

// RevokeRole revokes the active assignment of roleID from agentID. The row is
// kept with Active set to NULL so assignment history survives revocation.
// Returns ErrAssignmentNotFound when no active assignment exists.
func (e *Evaluator) RevokeRole(agentID uint64, roleID uint, revokedBy *uint64) error {
	if e.db == nil {
		return ErrDBNil
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.AgentRole
		err := db.ForUpdate(tx).
			Where("agent_id = ? AND role_id = ? AND active = ?", agentID, roleID, true).
			First(&assignment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}

		now := time.Now()

		return tx.Model(&assignment).Updates(map[string]any{
			"active":        nil,
			"revoked_at":    now,
			"revoked_by_id": revokedBy,
		}).Error
	})
	if err != nil {
		return err
	}

	e.cache.invalidate(agentID)
	e.auditRoleChange(models.ActionRoleRevoked, agentID, roleID, revokedBy)

	return nil
}

// auditRoleChange submits a role mutation event. The mutation has already
// committed; the audit write is best-effort and can never undo it.
func (e *Evaluator) auditRoleChange(action string, agentID uint64, roleID uint, actor *uint64) {
	if e.recorder == nil {
		return
	}

	var roleName string

	var role models.Role
	if err := e.db.First(&role, roleID).Error; err == nil {
		roleName = role.Name
	} else {
		log.Warn().Err(err).Uint("role_id", roleID).Msg("role lookup for audit failed")
	}

	e.recorder.Submit(audit.Event{
		AgentID:      actor,
		Action:       action,
		ResourceType: "role",
		ResourceID:   strconv.FormatUint(uint64(roleID), 10),
		Details: map[string]any{
			"target_agent_id": agentID,
			"role_id":         roleID,
			"role_name":       roleName,
		},
		Success: true,
	})
}
