package audit

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

const topLimit = 10

// ActionCount is an action with its occurrence count.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// AgentCount is an agent with its activity count.
type AgentCount struct {
	AgentID uint64 `json:"agent_id"`
	Email   string `json:"email"`
	Count   int    `json:"count"`
}

// IPCount is an IP address with its activity count.
type IPCount struct {
	IPAddress string `json:"ip_address"`
	Count     int    `json:"count"`
}

// DayActivity is one day of the report histogram.
type DayActivity struct {
	Date       string `json:"date"`
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// Report is the read-only audit aggregation for a date range.
type Report struct {
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	TotalEntries   int           `json:"total_entries"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
	SuccessRate    float64       `json:"success_rate"`
	TopAgents      []AgentCount  `json:"top_agents"`
	TopActions     []ActionCount `json:"top_actions"`
	TopIPs         []IPCount     `json:"top_ips"`
	DailyActivity  []DayActivity `json:"daily_activity"`
	SecurityEvents []ActionCount `json:"security_events"`
	FailedActions  []ActionCount `json:"failed_actions"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// GenerateReport aggregates audit activity for the date range. agentID and
// actions narrow the scope when non-nil/non-empty. The report is a pure read;
// it has no side effects.
func (r *Recorder) GenerateReport(start, end time.Time, agentID *uint64, actions []string) (*Report, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	base := func() *gorm.DB {
		q := r.db.Model(&models.AuditLog{}).
			Where("created_at >= ? AND created_at <= ?", start, end)

		if agentID != nil {
			q = q.Where("agent_id = ?", *agentID)
		}

		if len(actions) > 0 {
			q = q.Where("action IN ?", actions)
		}

		return q
	}

	report := &Report{
		Start:       start,
		End:         end,
		GeneratedAt: time.Now(),
	}

	var total, successful int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	if err := base().Where("success = ?", true).Count(&successful).Error; err != nil {
		return nil, err
	}

	report.TotalEntries = int(total)
	report.Successful = int(successful)
	report.Failed = int(total - successful)

	if total > 0 {
		report.SuccessRate = float64(successful) / float64(total) * 100
	}

	var err error

	if report.TopActions, err = r.topActions(base()); err != nil {
		return nil, err
	}

	if report.TopAgents, err = r.topAgents(base()); err != nil {
		return nil, err
	}

	if report.TopIPs, err = r.topIPs(base()); err != nil {
		return nil, err
	}

	if report.DailyActivity, err = r.dailyActivity(base()); err != nil {
		return nil, err
	}

	if report.SecurityEvents, err = r.topActions(
		base().Where("action IN ?", models.CriticalActions)); err != nil {
		return nil, err
	}

	if report.FailedActions, err = r.topActions(
		base().Where("success = ?", false)); err != nil {
		return nil, err
	}

	return report, nil
}

// topActions groups the query by action, most frequent first.
func (r *Recorder) topActions(q *gorm.DB) ([]ActionCount, error) {
	var rows []ActionCount

	err := q.Select("action, COUNT(*) AS count").
		Group("action").
		Order("count DESC").
		Limit(topLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// topAgents groups the query by agent, resolving emails for the result.
func (r *Recorder) topAgents(q *gorm.DB) ([]AgentCount, error) {
	var rows []AgentCount

	err := q.Select("agent_id, COUNT(*) AS count").
		Where("agent_id IS NOT NULL").
		Group("agent_id").
		Order("count DESC").
		Limit(topLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		var agent models.Agent
		if err := r.db.Select("email").First(&agent, rows[i].AgentID).Error; err == nil {
			rows[i].Email = agent.Email
		}
	}

	return rows, nil
}

func (r *Recorder) topIPs(q *gorm.DB) ([]IPCount, error) {
	var rows []IPCount

	err := q.Select("ip_address, COUNT(*) AS count").
		Where("ip_address <> ''").
		Group("ip_address").
		Order("count DESC").
		Limit(topLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// dailyActivity builds the per-day histogram. Date truncation is done in Go
// to stay portable across database engines.
func (r *Recorder) dailyActivity(q *gorm.DB) ([]DayActivity, error) {
	var rows []struct {
		CreatedAt time.Time
		Success   bool
	}

	if err := q.Select("created_at, success").Scan(&rows).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayActivity)

	for _, row := range rows {
		day := row.CreatedAt.Local().Format("2006-01-02")

		entry, ok := byDay[day]
		if !ok {
			entry = &DayActivity{Date: day}
			byDay[day] = entry
		}

		entry.Total++
		if row.Success {
			entry.Successful++
		} else {
			entry.Failed++
		}
	}

	days := make([]DayActivity, 0, len(byDay))
	for _, entry := range byDay {
		days = append(days, *entry)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return days, nil
}
