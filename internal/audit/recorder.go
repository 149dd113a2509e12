// Package audit implements the append-only audit trail: recording of
// security-relevant activity, suspicious-activity heuristics, retention
// cleanup and read-only reporting.
//
// Audit writes are decoupled from the business mutations they describe: a
// mutation commits first, then its audit event is dispatched best-effort
// through an in-process outbox. A failed audit write can therefore never roll
// back or break the operation being audited.
package audit

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// DefaultOutboxSize is the outbox buffer capacity used when none is configured.
const DefaultOutboxSize = 1024

// Event describes one security-relevant action to be recorded.
type Event struct {
	// AgentID is the acting agent; nil for system-initiated actions.
	AgentID *uint64
	// Action is the action key (see models audit action constants).
	Action string
	// ResourceType is the kind of resource affected.
	ResourceType string
	// ResourceID identifies the affected resource, when any.
	ResourceID string
	// IPAddress is the client IP the action originated from.
	IPAddress string
	// UserAgent is the raw client user agent string.
	UserAgent string
	// Details holds structured key/value context.
	Details map[string]any
	// Success indicates whether the action succeeded.
	Success bool
	// SessionKey links the event to a session, when any.
	SessionKey string
}

// Recorder appends audit log entries. Entries are immutable once written:
// the recorder exposes no update path, and rows are only removed by
// CleanupOldLogs.
type Recorder struct {
	db     *gorm.DB
	outbox chan Event

	stopOnce sync.Once
	stopped  chan struct{}
	drained  sync.WaitGroup
}

// NewRecorder creates a Recorder and starts its outbox dispatcher.
// bufferSize <= 0 selects DefaultOutboxSize.
func NewRecorder(db *gorm.DB, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultOutboxSize
	}

	r := &Recorder{
		db:      db,
		outbox:  make(chan Event, bufferSize),
		stopped: make(chan struct{}),
	}

	r.drained.Add(1)
	go r.dispatch()

	return r
}

// Submit queues an event for best-effort recording. It never fails and never
// blocks the calling operation: when the outbox is full the event is dropped
// with a warning.
func (r *Recorder) Submit(e Event) {
	select {
	case r.outbox <- e:
	case <-r.stopped:
		// Late submit after Close: write synchronously, still best-effort.
		if err := r.Record(e); err != nil {
			log.Warn().Err(err).Str("action", e.Action).Msg("audit write after close failed")
		}
	default:
		droppedEvents.Inc()
		log.Warn().Str("action", e.Action).Msg("audit outbox full, event dropped")
	}
}

// Record appends one entry synchronously. Callers on business paths should
// prefer Submit; Record exists for the maintenance commands and for callers
// that need the write confirmed.
func (r *Recorder) Record(e Event) error {
	if r.db == nil {
		return ErrDBNil
	}

	entry := models.AuditLog{
		AgentID:      e.AgentID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Details:      e.Details,
		Success:      e.Success,
		SessionKey:   e.SessionKey,
	}

	if err := r.db.Create(&entry).Error; err != nil {
		return err
	}

	recordedEvents.Inc()

	return nil
}

// Close stops the dispatcher after draining queued events.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.stopped)
	})
	r.drained.Wait()
}

func (r *Recorder) dispatch() {
	defer r.drained.Done()

	write := func(e Event) {
		if err := r.Record(e); err != nil {
			log.Warn().Err(err).Str("action", e.Action).Msg("audit write failed")
		}
	}

	for {
		select {
		case e := <-r.outbox:
			write(e)
		case <-r.stopped:
			// drain what is left, then stop
			for {
				select {
				case e := <-r.outbox:
					write(e)
				default:
					return
				}
			}
		}
	}
}
