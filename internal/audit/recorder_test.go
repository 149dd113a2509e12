package audit

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Agent{},
		&models.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func newTestRecorder(t *testing.T, db *gorm.DB) *Recorder {
	t.Helper()

	r := NewRecorder(db, 16)
	t.Cleanup(r.Close)

	return r
}

func createTestAgent(t *testing.T, db *gorm.DB, email string) *models.Agent {
	t.Helper()

	agent := &models.Agent{
		Active:        true,
		FirstName:     "Test",
		LastName:      "Agent",
		Email:         email,
		LicenseNumber: "LIC-" + email,
	}
	require.NoError(t, db.Create(agent).Error)

	return agent
}

// writeEntry inserts an audit row directly, bypassing the recorder, so tests
// can control created_at.
func writeEntry(t *testing.T, db *gorm.DB, entry models.AuditLog) {
	t.Helper()
	require.NoError(t, db.Create(&entry).Error)
}

func countEntries(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)

	return count
}

func TestRecord(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "rec@example.com")

	err := r.Record(Event{
		AgentID:      &agent.ID,
		Action:       models.ActionLogin,
		ResourceType: "session",
		ResourceID:   "42",
		IPAddress:    "10.0.0.1",
		UserAgent:    "tester",
		Details:      map[string]any{"method": "password"},
		Success:      true,
		SessionKey:   "abc",
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, agent.ID, *entry.AgentID)
	assert.Equal(t, models.ActionLogin, entry.Action)
	assert.Equal(t, "session", entry.ResourceType)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.Equal(t, "password", entry.Details["method"])
	assert.True(t, entry.Success)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestSubmit_DrainedOnClose(t *testing.T) {
	db := setupTestDB(t)
	r := NewRecorder(db, 16)

	for i := 0; i < 5; i++ {
		r.Submit(Event{Action: models.ActionLogout, Success: true})
	}

	r.Close()

	assert.EqualValues(t, 5, countEntries(t, db))
}

func TestSubmit_AfterCloseWritesSynchronously(t *testing.T) {
	db := setupTestDB(t)
	r := NewRecorder(db, 16)
	r.Close()

	r.Submit(Event{Action: models.ActionLogout, Success: true})

	assert.EqualValues(t, 1, countEntries(t, db))
}

func TestRecord_NilDB(t *testing.T) {
	r := &Recorder{}
	assert.ErrorIs(t, r.Record(Event{Action: "x"}), ErrDBNil)
}

func TestDetectFailedLogins(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "fail@example.com")

	for i := 0; i < 6; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionLogin,
			IPAddress: "203.0.113.7",
			Success:   false,
		})
	}

	findings, err := r.DetectSuspiciousActivity(nil, 7)
	require.NoError(t, err)

	matched := findingsOfType(findings, FindingMultipleFailedLogins)
	require.Len(t, matched, 1)
	assert.Equal(t, SeverityHigh, matched[0].Severity)
	assert.Equal(t, 6, matched[0].Count)
	assert.Equal(t, agent.ID, *matched[0].AgentID)
	assert.Equal(t, "203.0.113.7", matched[0].IPAddress)
}

func TestDetectFailedLogins_BelowThreshold(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "few@example.com")

	for i := 0; i < 4; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionLogin,
			IPAddress: "203.0.113.7",
			Success:   false,
		})
	}

	findings, err := r.DetectSuspiciousActivity(nil, 7)
	require.NoError(t, err)
	assert.Empty(t, findingsOfType(findings, FindingMultipleFailedLogins))
}

func TestDetectFailedLogins_OutsideWindowIgnored(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "stale@example.com")

	old := time.Now().AddDate(0, 0, -10)
	for i := 0; i < 6; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionLogin,
			IPAddress: "203.0.113.7",
			Success:   false,
			CreatedAt: old,
		})
	}

	findings, err := r.DetectSuspiciousActivity(nil, 7)
	require.NoError(t, err)
	assert.Empty(t, findingsOfType(findings, FindingMultipleFailedLogins))
}

func TestDetectMultipleIPs(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "roamer@example.com")

	for _, ip := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionProfileUpdate,
			IPAddress: ip,
			Success:   true,
		})
	}

	findings, err := r.DetectSuspiciousActivity(&agent.ID, 7)
	require.NoError(t, err)

	matched := findingsOfType(findings, FindingMultipleIPsShortTime)
	require.Len(t, matched, 1)
	assert.Equal(t, SeverityMedium, matched[0].Severity)
	assert.Equal(t, 3, matched[0].Count)
	assert.ElementsMatch(t,
		[]string{"198.51.100.1", "198.51.100.2", "198.51.100.3"},
		matched[0].IPAddresses)
}

func TestDetectMassTermination(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "mass@example.com")

	for i := 0; i < 10; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionSessionTerminated,
			IPAddress: "10.0.0.1",
			Success:   true,
		})
	}

	findings, err := r.DetectSuspiciousActivity(&agent.ID, 7)
	require.NoError(t, err)

	matched := findingsOfType(findings, FindingMassSessionTermination)
	require.Len(t, matched, 1)
	assert.Equal(t, SeverityMedium, matched[0].Severity)
	assert.Equal(t, 10, matched[0].Count)
}

func TestDetectSecurityChanges(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "sec@example.com")

	for i := 0; i < 5; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID:   &agent.ID,
			Action:    models.ActionSecurityChange,
			IPAddress: "10.0.0.1",
			Success:   true,
		})
	}

	findings, err := r.DetectSuspiciousActivity(&agent.ID, 7)
	require.NoError(t, err)

	matched := findingsOfType(findings, FindingFrequentSecurityChanges)
	require.Len(t, matched, 1)
	assert.Equal(t, 5, matched[0].Count)
}

func findingsOfType(findings []Finding, kind string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Type == kind {
			out = append(out, f)
		}
	}

	return out
}

func TestCleanupOldLogs(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "clean@example.com")

	old := time.Now().AddDate(0, 0, -120)

	// Old and non-critical: must be removed.
	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionProfileUpdate, CreatedAt: old,
	})
	// Old but critical: must survive when keepCritical is set.
	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionLogin, CreatedAt: old,
	})
	// Recent non-critical: inside the retention window.
	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionProfileUpdate,
	})

	deleted, err := r.CleanupOldLogs(90, true, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.EqualValues(t, 2, countEntries(t, db))

	var survivor models.AuditLog
	require.NoError(t, db.Where("created_at < ?", time.Now().AddDate(0, 0, -90)).First(&survivor).Error)
	assert.Equal(t, models.ActionLogin, survivor.Action)

	// Second run deletes nothing more.
	deleted, err = r.CleanupOldLogs(90, true, 100)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCleanupOldLogs_WithoutKeepCritical(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "purge@example.com")

	old := time.Now().AddDate(0, 0, -120)
	writeEntry(t, db, models.AuditLog{AgentID: &agent.ID, Action: models.ActionLogin, CreatedAt: old})
	writeEntry(t, db, models.AuditLog{AgentID: &agent.ID, Action: models.ActionProfileUpdate, CreatedAt: old})

	deleted, err := r.CleanupOldLogs(90, false, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.EqualValues(t, 0, countEntries(t, db))
}

func TestCleanupOldLogs_Batches(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)

	old := time.Now().AddDate(0, 0, -120)
	for i := 0; i < 7; i++ {
		writeEntry(t, db, models.AuditLog{Action: models.ActionProfileUpdate, CreatedAt: old})
	}

	deleted, err := r.CleanupOldLogs(90, true, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 7, deleted)
	assert.EqualValues(t, 0, countEntries(t, db))
}

func TestGenerateReport(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "report@example.com")

	for i := 0; i < 3; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID: &agent.ID, Action: models.ActionLogin,
			IPAddress: "10.0.0.1", Success: true,
		})
	}

	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionLogin,
		IPAddress: "10.0.0.2", Success: false,
	})
	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionProfileUpdate,
		IPAddress: "10.0.0.1", Success: true,
	})

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().Add(time.Hour)

	report, err := r.GenerateReport(start, end, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalEntries)
	assert.Equal(t, 4, report.Successful)
	assert.Equal(t, 1, report.Failed)
	assert.InDelta(t, 80.0, report.SuccessRate, 0.01)

	require.NotEmpty(t, report.TopActions)
	assert.Equal(t, models.ActionLogin, report.TopActions[0].Action)
	assert.Equal(t, 4, report.TopActions[0].Count)

	require.Len(t, report.TopAgents, 1)
	assert.Equal(t, agent.ID, report.TopAgents[0].AgentID)
	assert.Equal(t, "report@example.com", report.TopAgents[0].Email)

	require.Len(t, report.TopIPs, 2)
	assert.Equal(t, "10.0.0.1", report.TopIPs[0].IPAddress)

	require.Len(t, report.DailyActivity, 1)
	assert.Equal(t, 5, report.DailyActivity[0].Total)
	assert.Equal(t, 1, report.DailyActivity[0].Failed)

	// Login is a critical action, profile updates are not.
	require.Len(t, report.SecurityEvents, 1)
	assert.Equal(t, models.ActionLogin, report.SecurityEvents[0].Action)

	require.Len(t, report.FailedActions, 1)
	assert.Equal(t, 1, report.FailedActions[0].Count)
}

func TestGenerateReport_Filters(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "one@example.com")
	other := createTestAgent(t, db, "two@example.com")

	writeEntry(t, db, models.AuditLog{AgentID: &agent.ID, Action: models.ActionLogin, Success: true})
	writeEntry(t, db, models.AuditLog{AgentID: &agent.ID, Action: models.ActionLogout, Success: true})
	writeEntry(t, db, models.AuditLog{AgentID: &other.ID, Action: models.ActionLogin, Success: true})

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().Add(time.Hour)

	report, err := r.GenerateReport(start, end, &agent.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalEntries)

	report, err = r.GenerateReport(start, end, &agent.ID, []string{models.ActionLogin})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalEntries)
}

func TestAgentActivitySummary(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)
	agent := createTestAgent(t, db, "summary@example.com")
	other := createTestAgent(t, db, "noise@example.com")

	for i := 0; i < 4; i++ {
		writeEntry(t, db, models.AuditLog{
			AgentID: &agent.ID, Action: models.ActionLogin,
			IPAddress: "10.0.0.1", Success: true,
		})
	}

	writeEntry(t, db, models.AuditLog{
		AgentID: &agent.ID, Action: models.ActionProfileUpdate,
		IPAddress: "10.0.0.2", Success: false,
	})
	writeEntry(t, db, models.AuditLog{
		AgentID: &other.ID, Action: models.ActionLogin,
		IPAddress: "10.0.0.9", Success: true,
	})

	summary, err := r.AgentActivitySummary(agent.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, agent.ID, summary.AgentID)
	assert.Equal(t, 5, summary.TotalActions)
	assert.Equal(t, 4, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.InDelta(t, 80.0, summary.SuccessRate, 0.01)
	assert.Equal(t, 2, summary.UniqueIPs)
	assert.Equal(t, 4, summary.SecurityEvents)
	require.NotNil(t, summary.LastActivity)

	require.NotEmpty(t, summary.TopActions)
	assert.Equal(t, models.ActionLogin, summary.TopActions[0].Action)
}

func TestAgentActivitySummary_NoActivity(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRecorder(t, db)

	summary, err := r.AgentActivitySummary(424242, 30)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalActions)
	assert.Zero(t, summary.SuccessRate)
	assert.Nil(t, summary.LastActivity)
}
