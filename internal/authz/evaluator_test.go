package authz

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/directory"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(
		&models.Agent{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.AgentRole{},
		&models.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func createTestAgent(t *testing.T, db *gorm.DB, email string, active bool) *models.Agent {
	t.Helper()

	agent := &models.Agent{
		Active:        active,
		FirstName:     "Test",
		LastName:      "Agent",
		Email:         email,
		LicenseNumber: "LIC-" + email,
	}
	require.NoError(t, db.Create(agent).Error)

	return agent
}

func createTestRole(t *testing.T, db *gorm.DB, name string, codenames ...string) *models.Role {
	t.Helper()

	role := &models.Role{Name: name}

	for _, cn := range codenames {
		var perm models.Permission

		err := db.Where("codename = ?", cn).First(&perm).Error
		if err != nil {
			require.ErrorIs(t, err, gorm.ErrRecordNotFound)

			perm = models.Permission{Codename: cn, Name: cn}
			require.NoError(t, db.Create(&perm).Error)
		}

		role.Permissions = append(role.Permissions, perm)
	}

	require.NoError(t, db.Create(role).Error)

	return role
}

func TestAssignRole(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "assign@test.local", true)
	role := createTestRole(t, db, "Supervisor", "view_report")

	assignment, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, assignment.AgentID)
	assert.Equal(t, role.ID, assignment.RoleID)
	assert.True(t, assignment.IsActive())
}

func TestAssignRole_AlreadyAssigned(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "dup@test.local", true)
	role := createTestRole(t, db, "Supervisor")

	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)

	_, err = ev.AssignRole(agent.ID, role.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	// No second row was written.
	var count int64
	require.NoError(t, db.Model(&models.AgentRole{}).
		Where("agent_id = ? AND role_id = ?", agent.ID, role.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignRole_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "missing@test.local", true)
	role := createTestRole(t, db, "Supervisor")

	_, err := ev.AssignRole(9999, role.ID, nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	_, err = ev.AssignRole(agent.ID, 9999, nil)
	assert.ErrorIs(t, err, directory.ErrRoleNotFound)
}

func TestRevokeRole(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "revoke@test.local", true)
	role := createTestRole(t, db, "Supervisor")
	admin := createTestAgent(t, db, "admin@test.local", true)

	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)

	err = ev.RevokeRole(agent.ID, role.ID, &admin.ID)
	require.NoError(t, err)

	var assignment models.AgentRole
	require.NoError(t, db.Where("agent_id = ? AND role_id = ?", agent.ID, role.ID).
		First(&assignment).Error)
	assert.False(t, assignment.IsActive())
	assert.NotNil(t, assignment.RevokedAt)
	require.NotNil(t, assignment.RevokedByID)
	assert.Equal(t, admin.ID, *assignment.RevokedByID)
}

func TestRevokeRole_NotAssigned(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "nothing@test.local", true)
	role := createTestRole(t, db, "Supervisor")

	err := ev.RevokeRole(agent.ID, role.ID, nil)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignRole_ReassignAfterRevoke(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "cycle@test.local", true)
	role := createTestRole(t, db, "Supervisor")

	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)
	require.NoError(t, ev.RevokeRole(agent.ID, role.ID, nil))

	// Reassignment after revocation is allowed and keeps the revoked row.
	_, err = ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AgentRole{}).
		Where("agent_id = ? AND role_id = ?", agent.ID, role.ID).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCheckPermission(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "check@test.local", true)
	role := createTestRole(t, db, "Supervisor", "view_report", "view_property")

	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)

	assert.True(t, ev.CheckPermission(agent.ID, "view_report"))
	assert.True(t, ev.CheckPermission(agent.ID, "view_property"))
	assert.False(t, ev.CheckPermission(agent.ID, "delete_property"))

	// Unknown agents simply hold nothing.
	assert.False(t, ev.CheckPermission(9999, "view_report"))
}

func TestCheckPermission_CacheInvalidatedOnRevoke(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "stale@test.local", true)
	role := createTestRole(t, db, "Supervisor", "view_report")

	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)
	require.True(t, ev.CheckPermission(agent.ID, "view_report"))

	require.NoError(t, ev.RevokeRole(agent.ID, role.ID, nil))

	// The cached grant must not survive the revocation.
	assert.False(t, ev.CheckPermission(agent.ID, "view_report"))
}

func TestCheckRole(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "roles@test.local", true)
	supervisor := createTestRole(t, db, models.RoleSupervisor)
	basic := createTestRole(t, db, models.RoleBasicAgent)
	createTestRole(t, db, models.RoleAdministrator)

	_, err := ev.AssignRole(agent.ID, supervisor.ID, nil)
	require.NoError(t, err)
	_, err = ev.AssignRole(agent.ID, basic.ID, nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		roles []string
		mode  RoleMatchMode
		want  bool
	}{
		{"any single held", []string{models.RoleSupervisor}, RoleMatchAny, true},
		{"any one of two held", []string{models.RoleAdministrator, models.RoleSupervisor}, RoleMatchAny, true},
		{"any none held", []string{models.RoleAdministrator}, RoleMatchAny, false},
		{"all both held", []string{models.RoleSupervisor, models.RoleBasicAgent}, RoleMatchAll, true},
		{"all one missing", []string{models.RoleSupervisor, models.RoleAdministrator}, RoleMatchAll, false},
		{"unknown role name", []string{"Inventado"}, RoleMatchAny, false},
		{"empty list", nil, RoleMatchAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.CheckRole(agent.ID, tt.roles, tt.mode))
		})
	}
}

func TestEffectivePermissions(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "effective@test.local", true)
	first := createTestRole(t, db, "First", "view_report", "view_property")
	second := createTestRole(t, db, "Second", "view_property", "edit_property")

	_, err := ev.AssignRole(agent.ID, first.ID, nil)
	require.NoError(t, err)
	_, err = ev.AssignRole(agent.ID, second.ID, nil)
	require.NoError(t, err)

	perms, err := ev.EffectivePermissions(agent.ID)
	require.NoError(t, err)

	// Distinct union over both roles.
	assert.Equal(t, []string{"edit_property", "view_property", "view_report"}, perms)
}

func TestAgentsWithPermission(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	holder := createTestAgent(t, db, "holder@test.local", true)
	inactive := createTestAgent(t, db, "inactive@test.local", false)
	createTestAgent(t, db, "bystander@test.local", true)
	role := createTestRole(t, db, "Supervisor", "view_report")

	_, err := ev.AssignRole(holder.ID, role.ID, nil)
	require.NoError(t, err)
	_, err = ev.AssignRole(inactive.ID, role.ID, nil)
	require.NoError(t, err)

	agents, err := ev.AgentsWithPermission("view_report")
	require.NoError(t, err)

	require.Len(t, agents, 1)
	assert.Equal(t, holder.ID, agents[0].ID)
}

func TestBulkAssignRoles(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	agent := createTestAgent(t, db, "bulk@test.local", true)
	first := createTestRole(t, db, "First")
	second := createTestRole(t, db, "Second")

	_, err := ev.AssignRole(agent.ID, first.ID, nil)
	require.NoError(t, err)

	result := ev.BulkAssignRoles(agent.ID, []uint{first.ID, second.ID, 9999}, nil)

	assert.Equal(t, []uint{second.ID}, result.Assigned)
	assert.Equal(t, []uint{first.ID}, result.AlreadyAssigned)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "role 9999")

	// The failing role did not undo the successful one.
	assert.True(t, ev.CheckRole(agent.ID, []string{"Second"}, RoleMatchAny))
}

func TestValidateRoleAssignment(t *testing.T) {
	db := setupTestDB(t)
	ev := NewEvaluator(db, nil, 0)

	active := createTestAgent(t, db, "valid@test.local", true)
	inactive := createTestAgent(t, db, "dormant@test.local", false)
	role := createTestRole(t, db, "Supervisor")
	held := createTestRole(t, db, "Held")

	_, err := ev.AssignRole(active.ID, held.ID, nil)
	require.NoError(t, err)

	tests := []struct {
		name         string
		agentID      uint64
		roleID       uint
		wantValid    bool
		wantWarnings int
		wantErrors   int
	}{
		{"assignable", active.ID, role.ID, true, 0, 0},
		{"inactive agent warns", inactive.ID, role.ID, true, 1, 0},
		{"already assigned", active.ID, held.ID, false, 0, 1},
		{"missing agent", 9999, role.ID, false, 0, 1},
		{"missing role", active.ID, 9999, false, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ev.ValidateRoleAssignment(tt.agentID, tt.roleID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Len(t, result.Warnings, tt.wantWarnings)
			assert.Len(t, result.Errors, tt.wantErrors)
		})
	}

	// Preview never mutates.
	var count int64
	require.NoError(t, db.Model(&models.AgentRole{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPermissionCache_Bounded(t *testing.T) {
	cache := newPermissionCache(3)

	for i := uint64(1); i <= 5; i++ {
		cache.put(i, []string{fmt.Sprintf("perm_%d", i)})
	}

	assert.LessOrEqual(t, cache.len(), 3)
}

func TestPermissionCache_Invalidate(t *testing.T) {
	cache := newPermissionCache(0)

	cache.put(1, []string{"view_report"})

	perms, ok := cache.get(1)
	require.True(t, ok)
	assert.Contains(t, perms, "view_report")

	cache.invalidate(1)

	_, ok = cache.get(1)
	assert.False(t, ok)
}
