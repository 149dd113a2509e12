package audit

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// DefaultCleanupBatchSize bounds one deletion transaction.
const DefaultCleanupBatchSize = 1000

// CleanupOldLogs deletes audit entries older than the retention window.
// When keepCritical is true, entries for security-critical actions
// (models.CriticalActions) are retained regardless of age.
//
// Deletion proceeds in bounded batches, each committed in its own
// transaction: a crash mid-run leaves an already-deleted prefix, and the next
// run simply continues. The operation is idempotent.
func (r *Recorder) CleanupOldLogs(retentionDays int, keepCritical bool, batchSize int) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNil
	}

	if retentionDays <= 0 {
		retentionDays = 90
	}

	if batchSize <= 0 {
		batchSize = DefaultCleanupBatchSize
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var deleted int64

	for {
		var ids []uint64

		q := r.db.Model(&models.AuditLog{}).
			Where("created_at < ?", cutoff)

		if keepCritical {
			q = q.Where("action NOT IN ?", models.CriticalActions)
		}

		if err := q.Limit(batchSize).Pluck("id", &ids).Error; err != nil {
			return deleted, err
		}

		if len(ids) == 0 {
			break
		}

		err := r.db.Transaction(func(tx *gorm.DB) error {
			return tx.Where("id IN ?", ids).Delete(&models.AuditLog{}).Error
		})
		if err != nil {
			return deleted, err
		}

		deleted += int64(len(ids))
		cleanupDeleted.Add(float64(len(ids)))
	}

	log.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).
		Msg("audit log cleanup finished")

	return deleted, nil
}
