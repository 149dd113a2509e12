package audit

import (
	"fmt"
	"time"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// Finding severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Finding types.
const (
	FindingMultipleFailedLogins    = "multiple_failed_logins"
	FindingMultipleIPsShortTime    = "multiple_ips_short_time"
	FindingUnusualHoursActivity    = "unusual_hours_activity"
	FindingFrequentSecurityChanges = "frequent_security_changes"
	FindingMassSessionTermination  = "mass_session_termination"
)

// Detection thresholds. Each heuristic fires independently; there is no
// deduplication or weighting across them.
const (
	failedLoginThreshold      = 5
	distinctIPThreshold       = 3
	distinctIPWindow          = 2 * time.Hour
	nightActivityThreshold    = 10
	nightWindowStartHour      = 0
	nightWindowEndHour        = 6
	securityChangeThreshold   = 5
	sessionTerminateThreshold = 10
)

// Finding is one suspicious-activity detection result.
type Finding struct {
	// Type identifies the heuristic that fired.
	Type string `json:"type"`
	// Severity is low, medium or high.
	Severity string `json:"severity"`
	// AgentID is the agent concerned, when the heuristic is per-agent.
	AgentID *uint64 `json:"agent_id,omitempty"`
	// IPAddress is set for IP-scoped findings.
	IPAddress string `json:"ip_address,omitempty"`
	// IPAddresses lists the distinct addresses for multi-IP findings.
	IPAddresses []string `json:"ip_addresses,omitempty"`
	// Count is the number of matching entries.
	Count int `json:"count"`
	// Description is a human-readable summary.
	Description string `json:"description"`
}

// DetectSuspiciousActivity runs the fixed set of heuristics over the lookback
// window and returns the unordered list of findings. agentID narrows the
// analysis to one agent; nil analyzes all activity.
func (r *Recorder) DetectSuspiciousActivity(agentID *uint64, windowDays int) ([]Finding, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	if windowDays <= 0 {
		windowDays = 7
	}

	start := time.Now().AddDate(0, 0, -windowDays)
	findings := []Finding{}

	checks := []func(*uint64, time.Time) ([]Finding, error){
		r.detectFailedLogins,
		r.detectMultipleIPs,
		r.detectNightActivity,
		r.detectSecurityChanges,
		r.detectMassTermination,
	}

	for _, check := range checks {
		found, err := check(agentID, start)
		if err != nil {
			return nil, err
		}

		findings = append(findings, found...)
	}

	for _, f := range findings {
		findingsDetected.WithLabelValues(f.Type).Inc()
	}

	return findings, nil
}

// detectFailedLogins flags >= 5 failed logins grouped by (agent, ip).
func (r *Recorder) detectFailedLogins(agentID *uint64, start time.Time) ([]Finding, error) {
	var rows []struct {
		AgentID   *uint64
		IPAddress string
		Count     int
	}

	q := r.db.Model(&models.AuditLog{}).
		Select("agent_id, ip_address, COUNT(*) AS count").
		Where("action = ? AND success = ? AND created_at >= ?", models.ActionLogin, false, start).
		Group("agent_id, ip_address").
		Having("COUNT(*) >= ?", failedLoginThreshold)

	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	findings := make([]Finding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, Finding{
			Type:        FindingMultipleFailedLogins,
			Severity:    SeverityHigh,
			AgentID:     row.AgentID,
			IPAddress:   row.IPAddress,
			Count:       row.Count,
			Description: fmt.Sprintf("multiple failed login attempts (%d)", row.Count),
		})
	}

	return findings, nil
}

// detectMultipleIPs flags agents acting from >= 3 distinct IPs within the
// last two hours.
func (r *Recorder) detectMultipleIPs(agentID *uint64, _ time.Time) ([]Finding, error) {
	since := time.Now().Add(-distinctIPWindow)

	var rows []struct {
		AgentID   uint64
		IPAddress string
	}

	q := r.db.Model(&models.AuditLog{}).
		Distinct("agent_id, ip_address").
		Where("created_at >= ? AND agent_id IS NOT NULL AND ip_address <> ''", since)

	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	ipsByAgent := make(map[uint64][]string)
	for _, row := range rows {
		ipsByAgent[row.AgentID] = append(ipsByAgent[row.AgentID], row.IPAddress)
	}

	var findings []Finding

	for agent, ips := range ipsByAgent {
		if len(ips) < distinctIPThreshold {
			continue
		}

		id := agent
		findings = append(findings, Finding{
			Type:        FindingMultipleIPsShortTime,
			Severity:    SeverityMedium,
			AgentID:     &id,
			IPAddresses: ips,
			Count:       len(ips),
			Description: fmt.Sprintf("activity from %d different IPs within 2 hours", len(ips)),
		})
	}

	return findings, nil
}

// detectNightActivity flags >= 10 actions between 00:00 and 06:00 local
// time, excluding expiry and cleanup noise. Hour extraction is done in Go to
// stay portable across database engines.
func (r *Recorder) detectNightActivity(agentID *uint64, start time.Time) ([]Finding, error) {
	var stamps []time.Time

	q := r.db.Model(&models.AuditLog{}).
		Where("created_at >= ?", start).
		Where("action NOT IN ?", []string{models.ActionSessionExpired, "cleanup"})

	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	if err := q.Pluck("created_at", &stamps).Error; err != nil {
		return nil, err
	}

	count := 0

	for _, ts := range stamps {
		h := ts.Local().Hour()
		if h >= nightWindowStartHour && h < nightWindowEndHour {
			count++
		}
	}

	if count < nightActivityThreshold {
		return nil, nil
	}

	return []Finding{{
		Type:        FindingUnusualHoursActivity,
		Severity:    SeverityLow,
		AgentID:     agentID,
		Count:       count,
		Description: fmt.Sprintf("unusual night-time activity (%d actions)", count),
	}}, nil
}

// detectSecurityChanges flags >= 5 security-settings changes in the window.
func (r *Recorder) detectSecurityChanges(agentID *uint64, start time.Time) ([]Finding, error) {
	count, err := r.countActions(agentID, start, []string{models.ActionSecurityChange})
	if err != nil {
		return nil, err
	}

	if count < securityChangeThreshold {
		return nil, nil
	}

	return []Finding{{
		Type:        FindingFrequentSecurityChanges,
		Severity:    SeverityMedium,
		AgentID:     agentID,
		Count:       count,
		Description: fmt.Sprintf("frequent security settings changes (%d)", count),
	}}, nil
}

// detectMassTermination flags >= 10 session-termination events in the window.
func (r *Recorder) detectMassTermination(agentID *uint64, start time.Time) ([]Finding, error) {
	count, err := r.countActions(agentID, start, []string{models.ActionSessionTerminated})
	if err != nil {
		return nil, err
	}

	if count < sessionTerminateThreshold {
		return nil, nil
	}

	return []Finding{{
		Type:        FindingMassSessionTermination,
		Severity:    SeverityMedium,
		AgentID:     agentID,
		Count:       count,
		Description: fmt.Sprintf("mass session termination (%d events)", count),
	}}, nil
}

func (r *Recorder) countActions(agentID *uint64, start time.Time, actions []string) (int, error) {
	var count int64

	q := r.db.Model(&models.AuditLog{}).
		Where("created_at >= ? AND action IN ?", start, actions)

	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}
