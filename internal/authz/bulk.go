package authz

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// BulkAssignResult reports the per-role outcome of a bulk assignment.
type BulkAssignResult struct {
	// Assigned lists the role IDs newly granted.
	Assigned []uint `json:"assigned"`
	// AlreadyAssigned lists the role IDs the agent already held.
	AlreadyAssigned []uint `json:"already_assigned"`
	// Errors lists per-role failures, keeping the rest of the batch intact.
	Errors []string `json:"errors"`
}

// BulkAssignRoles grants several roles to agentID, committing each assignment
// independently. A failing role lands in Errors and does not undo the roles
// assigned before it.
func (e *Evaluator) BulkAssignRoles(agentID uint64, roleIDs []uint, assignedBy *uint64) *BulkAssignResult {
	result := &BulkAssignResult{}

	for _, roleID := range roleIDs {
		_, err := e.AssignRole(agentID, roleID, assignedBy)
		switch {
		case err == nil:
			result.Assigned = append(result.Assigned, roleID)
		case errors.Is(err, ErrAlreadyAssigned):
			result.AlreadyAssigned = append(result.AlreadyAssigned, roleID)
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("role %d: %v", roleID, err))
		}
	}

	return result
}

// ValidationResult is the outcome of a side-effect-free assignment preview.
type ValidationResult struct {
	// Valid is true when the assignment would succeed.
	Valid bool `json:"valid"`
	// Warnings are non-blocking observations, such as an inactive agent.
	Warnings []string `json:"warnings"`
	// Errors are the conditions that would make the assignment fail.
	Errors []string `json:"errors"`
}

// ValidateRoleAssignment previews whether roleID can be assigned to agentID
// without mutating anything. An inactive agent is a warning; a missing agent,
// missing role or existing active assignment is an error.
func (e *Evaluator) ValidateRoleAssignment(agentID uint64, roleID uint) (*ValidationResult, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	result := &ValidationResult{}

	var agent models.Agent
	if err := e.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, "agent not found")
		} else {
			return nil, err
		}
	} else if !agent.Active {
		result.Warnings = append(result.Warnings, "agent account is inactive")
	}

	var role models.Role
	if err := e.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, "role not found")
		} else {
			return nil, err
		}
	}

	var count int64
	err := e.db.Model(&models.AgentRole{}).
		Where("agent_id = ? AND role_id = ? AND active = ?", agentID, roleID, true).
		Count(&count).Error
	if err != nil {
		return nil, err
	}

	if count > 0 {
		result.Errors = append(result.Errors, "role is already assigned to agent")
	}

	result.Valid = len(result.Errors) == 0

	return result, nil
}
