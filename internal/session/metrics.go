package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	createdSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_created_total",
		Help: "Total number of sessions created.",
	})

	terminatedSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessions_terminated_total",
		Help: "Total number of sessions terminated, by reason.",
	}, []string{"reason"})

	sweptSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_swept_total",
		Help: "Total number of expired sessions closed by the sweeper.",
	})
)
