package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/directory"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

type testEnv struct {
	svc *Service
	db  *gorm.DB
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(
		&models.Agent{},
		&models.SecuritySettings{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.AgentRole{},
		&models.Session{},
		&models.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	require.NoError(t, directory.EnsureDefaults(db))

	cfg := &config.Config{Server: config.Server{Port: 8080}}

	recorder := audit.NewRecorder(db, 16)
	t.Cleanup(recorder.Close)

	sessions := session.NewManager(db, nil)
	evaluator := authz.NewEvaluator(db, nil, 0)
	auth := authn.NewService(db, sessions, nil)

	return &testEnv{
		svc: New(cfg, db, evaluator, sessions, auth, recorder),
		db:  db,
	}
}

func (e *testEnv) createAgent(t *testing.T, email, password string, superuser bool) *models.Agent {
	t.Helper()

	agent := &models.Agent{
		Active:        true,
		Email:         email,
		LicenseNumber: "LIC-" + email,
		Password:      models.HashPassword(password),
		Superuser:     superuser,
	}
	require.NoError(t, e.db.Create(agent).Error)

	return agent
}

func (e *testEnv) sessionToken(t *testing.T, agentID uint64) string {
	t.Helper()

	sess, err := session.NewManager(e.db, nil).Create(agentID, session.DeviceContext{}, 0)
	require.NoError(t, err)

	return sess.SessionKey
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := e.svc.App.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	return resp.StatusCode, decoded
}

func TestHealthz(t *testing.T) {
	env := setupTestService(t)

	status, body := env.do(t, "GET", "/healthz", nil, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLoginAndCheckPermission(t *testing.T) {
	env := setupTestService(t)

	agent := env.createAgent(t, "login@test.local", "correct-horse", false)

	var role models.Role
	require.NoError(t, env.db.Where("name = ?", models.RoleAdministrator).First(&role).Error)

	ev := authz.NewEvaluator(env.db, nil, 0)
	_, err := ev.AssignRole(agent.ID, role.ID, nil)
	require.NoError(t, err)

	status, body := env.do(t, "POST", "/v1/login", map[string]any{
		"email":    "login@test.local",
		"password": "correct-horse",
	}, "")
	require.Equal(t, 200, status)
	assert.NotEmpty(t, body["token"])

	status, body = env.do(t, "POST", "/v1/permissions/check", map[string]any{
		"agent_id":  agent.ID,
		"codenames": []string{"view_report"},
	}, "")
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["allowed"])

	status, _ = env.do(t, "POST", "/v1/login", map[string]any{
		"email":    "login@test.local",
		"password": "wrong",
	}, "")
	assert.Equal(t, 401, status)
}

func TestAssignRole_Guarded(t *testing.T) {
	env := setupTestService(t)

	admin := env.createAgent(t, "admin@test.local", "pw", true)
	target := env.createAgent(t, "target@test.local", "pw", false)

	var role models.Role
	require.NoError(t, env.db.Where("name = ?", models.RoleSupervisor).First(&role).Error)

	payload := map[string]any{"agent_id": target.ID, "role_id": role.ID}

	// No session token: anonymous, denied.
	status, _ := env.do(t, "POST", "/v1/roles/assign", payload, "")
	assert.Equal(t, 401, status)

	// Non-admin caller: forbidden.
	status, _ = env.do(t, "POST", "/v1/roles/assign", payload, env.sessionToken(t, target.ID))
	assert.Equal(t, 403, status)

	// Superuser caller: created.
	token := env.sessionToken(t, admin.ID)
	status, _ = env.do(t, "POST", "/v1/roles/assign", payload, token)
	assert.Equal(t, 201, status)

	// Duplicate assignment conflicts.
	status, _ = env.do(t, "POST", "/v1/roles/assign", payload, token)
	assert.Equal(t, 409, status)

	// Revoke, then revoking again is a 404.
	status, _ = env.do(t, "POST", "/v1/roles/revoke", payload, token)
	assert.Equal(t, 200, status)
	status, _ = env.do(t, "POST", "/v1/roles/revoke", payload, token)
	assert.Equal(t, 404, status)
}

func TestSessionEndpoints(t *testing.T) {
	env := setupTestService(t)

	agent := env.createAgent(t, "sess@test.local", "pw", false)

	status, body := env.do(t, "POST", "/v1/sessions", map[string]any{
		"agent_id":   agent.ID,
		"ip_address": "10.0.0.8",
		"user_agent": "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
	}, "")
	require.Equal(t, 201, status)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	status, _ = env.do(t, "POST", "/v1/sessions/extend", map[string]any{
		"token":   token,
		"minutes": 600,
	}, "")
	assert.Equal(t, 200, status)

	status, body = env.do(t, "GET", fmt.Sprintf("/v1/sessions/%d", agent.ID), nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, body["sessions"], 1)

	status, _ = env.do(t, "POST", "/v1/sessions/terminate", map[string]any{
		"token":  token,
		"reason": models.TerminationAdminAction,
	}, "")
	assert.Equal(t, 200, status)

	status, _ = env.do(t, "POST", "/v1/sessions/terminate", map[string]any{
		"token": token,
	}, "")
	assert.Equal(t, 404, status)

	// Out-of-range timeout is rejected by validation.
	status, _ = env.do(t, "POST", "/v1/sessions", map[string]any{
		"agent_id":        agent.ID,
		"timeout_minutes": 10,
	}, "")
	assert.Equal(t, 400, status)
}

func TestAuditEndpoints_Guarded(t *testing.T) {
	env := setupTestService(t)

	admin := env.createAgent(t, "auditor@test.local", "pw", true)
	plain := env.createAgent(t, "plain@test.local", "pw", false)

	status, _ := env.do(t, "POST", "/v1/audit/record", map[string]any{
		"agent_id": admin.ID,
		"action":   models.ActionProfileUpdate,
		"success":  true,
	}, "")
	assert.Equal(t, 201, status)

	status, body := env.do(t, "GET", "/v1/audit/report", nil, env.sessionToken(t, admin.ID))
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["total_entries"])

	status, _ = env.do(t, "GET", "/v1/audit/suspicious?window_days=7", nil, env.sessionToken(t, admin.ID))
	assert.Equal(t, 200, status)

	// Reporting endpoints require supervisor or admin.
	status, _ = env.do(t, "GET", "/v1/audit/report", nil, env.sessionToken(t, plain.ID))
	assert.Equal(t, 403, status)
}
