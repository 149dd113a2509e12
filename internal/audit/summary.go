package audit

import (
	"time"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// ActivitySummary is a per-agent activity overview over a lookback window.
type ActivitySummary struct {
	AgentID        uint64        `json:"agent_id"`
	PeriodDays     int           `json:"period_days"`
	TotalActions   int           `json:"total_actions"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
	SuccessRate    float64       `json:"success_rate"`
	TopActions     []ActionCount `json:"top_actions"`
	UniqueIPs      int           `json:"unique_ips"`
	SecurityEvents int           `json:"security_events"`
	LastActivity   *time.Time    `json:"last_activity,omitempty"`
}

// AgentActivitySummary aggregates one agent's audit activity over the last
// days. Read-only.
func (r *Recorder) AgentActivitySummary(agentID uint64, days int) (*ActivitySummary, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	if days <= 0 {
		days = 30
	}

	start := time.Now().AddDate(0, 0, -days)

	summary := &ActivitySummary{AgentID: agentID, PeriodDays: days}

	var total, successful int64

	if err := r.db.Model(&models.AuditLog{}).
		Where("agent_id = ? AND created_at >= ?", agentID, start).
		Count(&total).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.AuditLog{}).
		Where("agent_id = ? AND created_at >= ? AND success = ?", agentID, start, true).
		Count(&successful).Error; err != nil {
		return nil, err
	}

	summary.TotalActions = int(total)
	summary.Successful = int(successful)
	summary.Failed = int(total - successful)

	if total > 0 {
		summary.SuccessRate = float64(successful) / float64(total) * 100
	}

	var err error

	summary.TopActions, err = r.topActions(r.db.Model(&models.AuditLog{}).
		Where("agent_id = ? AND created_at >= ?", agentID, start))
	if err != nil {
		return nil, err
	}

	var ips []string
	if err := r.db.Model(&models.AuditLog{}).
		Distinct("ip_address").
		Where("agent_id = ? AND created_at >= ? AND ip_address <> ''", agentID, start).
		Pluck("ip_address", &ips).Error; err != nil {
		return nil, err
	}

	summary.UniqueIPs = len(ips)

	var securityCount int64
	if err := r.db.Model(&models.AuditLog{}).
		Where("agent_id = ? AND created_at >= ? AND action IN ?", agentID, start, models.CriticalActions).
		Count(&securityCount).Error; err != nil {
		return nil, err
	}

	summary.SecurityEvents = int(securityCount)

	var last models.AuditLog
	if err := r.db.Where("agent_id = ?", agentID).
		Order("created_at DESC").
		First(&last).Error; err == nil {
		summary.LastActivity = &last.CreatedAt
	}

	return summary, nil
}
