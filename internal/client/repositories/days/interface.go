package days

import (
	"context"

	"github.com/dmitrijs2005/shiftbook/internal/client/models"
)

// Repository is the local store of day records, keyed by calendar date.
// All operations are local and durable; no two records share a date.
type Repository interface {
	// Get returns the record for the given date, or common.ErrorNotFound.
	Get(ctx context.Context, date string) (*models.DayRecord, error)

	// Save upserts the record by its date key.
	Save(ctx context.Context, rec *models.DayRecord) error

	// Delete physically removes the record. Only called after a deletion
	// tombstone has been acknowledged by the shift service.
	Delete(ctx context.Context, date string) error

	// ListDirty returns all records with unpushed local changes,
	// including deletion tombstones.
	ListDirty(ctx context.Context) ([]*models.DayRecord, error)

	// AcknowledgePush records a confirmed upload: clears dirty and
	// force_clear and stamps the server id and acknowledged clock — but
	// only if the row still carries pushedAt, i.e. no edit landed while
	// the upload was in flight. Returns whether the row was updated; a
	// concurrently edited row stays dirty for the next cycle.
	AcknowledgePush(ctx context.Context, date string, pushedAt int64, serverID string, ackUpdatedAt int64) (bool, error)

	// ClearDirty drops the dirty flag of the exact state identified by
	// ifUpdatedAt, leaving a concurrently edited row untouched. Used when
	// a state judged non-authoritative is discarded without a push.
	ClearDirty(ctx context.Context, date string, ifUpdatedAt int64) (bool, error)

	// PurgeDeleted physically removes an acknowledged tombstone, but only
	// if the row is still the deleted state identified by ifUpdatedAt; a
	// day re-created during the delete round trip survives.
	PurgeDeleted(ctx context.Context, date string, ifUpdatedAt int64) (bool, error)
}

// Watcher is implemented by stores that can notify observers of changes,
// so presentation code does not have to poll.
type Watcher interface {
	// Subscribe registers fn for change notifications on one date.
	// The returned function cancels the subscription.
	Subscribe(date string, fn func(models.DayRecord)) func()
}
