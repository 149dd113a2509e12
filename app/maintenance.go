package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/daemon"
)

// Maintenance commands are the scheduler-invoked units: each one runs a
// single idempotent pass and exits, so a crashed or repeated run never
// duplicates side effects.

func init() { //nolint: gochecknoinits
	reportCmd.Flags().IntVar(&reportDays, "days", 30, "Lookback window in days")
	reportCmd.Flags().Uint64Var(&reportAgentID, "agent", 0, "Restrict to one agent id (0 = all)")

	detectCmd.Flags().IntVar(&reportDays, "days", 7, "Lookback window in days")
	detectCmd.Flags().Uint64Var(&reportAgentID, "agent", 0, "Restrict to one agent id (0 = all)")

	summaryCmd.Flags().IntVar(&reportDays, "days", 30, "Lookback window in days")
	summaryCmd.Flags().Uint64Var(&reportAgentID, "agent", 0, "Agent id (required)")

	rootCmd.AddCommand(sweepSessionsCmd)
	rootCmd.AddCommand(cleanupAuditCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(seedCmd)
}

var (
	reportDays    int
	reportAgentID uint64

	sweepSessionsCmd = &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Terminate every session whose expiry has passed",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}
			defer d.Close()

			swept, err := d.Sessions.SweepExpired()
			if err != nil {
				return err
			}

			log.Info().Int64("swept", swept).Msg("expired sessions closed")

			return nil
		},
	}

	cleanupAuditCmd = &cobra.Command{
		Use:   "cleanup-audit",
		Short: "Delete audit entries past the retention window",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}
			defer d.Close()

			deleted, err := d.Recorder.CleanupOldLogs(
				cfg.Audit.RetentionDays,
				cfg.Audit.KeepCritical,
				cfg.Audit.CleanupBatchSize,
			)
			if err != nil {
				return err
			}

			log.Info().
				Int64("deleted", deleted).
				Int("retention_days", cfg.Audit.RetentionDays).
				Msg("audit retention cleanup finished")

			return nil
		},
	}

	reportCmd = &cobra.Command{
		Use:   "audit-report",
		Short: "Print an audit activity report as JSON",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}
			defer d.Close()

			end := time.Now()
			start := end.AddDate(0, 0, -reportDays)

			report, err := d.Recorder.GenerateReport(start, end, optionalAgent(), nil)
			if err != nil {
				return err
			}

			return printJSON(report)
		},
	}

	detectCmd = &cobra.Command{
		Use:   "detect-suspicious",
		Short: "Run the suspicious-activity heuristics and print findings as JSON",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}
			defer d.Close()

			findings, err := d.Recorder.DetectSuspiciousActivity(optionalAgent(), reportDays)
			if err != nil {
				return err
			}

			log.Info().Int("findings", len(findings)).Msg("suspicious-activity scan finished")

			return printJSON(findings)
		},
	}

	summaryCmd = &cobra.Command{
		Use:   "activity-summary",
		Short: "Print one agent's activity summary as JSON",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if reportAgentID == 0 {
				return errors.New("--agent is required")
			}

			d, err := openDaemon()
			if err != nil {
				return err
			}
			defer d.Close()

			summary, err := d.Recorder.AgentActivitySummary(reportAgentID, reportDays)
			if err != nil {
				return err
			}

			return printJSON(summary)
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Migrate the schema and install default roles, permissions and the initial superuser",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			log.Info().Msg("schema migrated and defaults seeded")

			return nil
		},
	}
)

// openDaemon connects to the database without migrating or seeding.
func openDaemon() (*daemon.Daemon, error) {
	db, err := daemon.OpenDB(&cfg)
	if err != nil {
		return nil, err
	}

	return daemon.NewWithDB(&cfg, db), nil
}

func optionalAgent() *uint64 {
	if reportAgentID == 0 {
		return nil
	}

	return &reportAgentID
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
