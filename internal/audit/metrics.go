package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_events_recorded_total",
		Help: "Number of audit log entries written.",
	})

	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_events_dropped_total",
		Help: "Number of audit events dropped because the outbox was full.",
	})

	cleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_cleanup_deleted_total",
		Help: "Number of audit log entries removed by retention cleanup.",
	})

	findingsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_suspicious_findings_total",
		Help: "Number of suspicious-activity findings, by type.",
	}, []string{"type"})
)
