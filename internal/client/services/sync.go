package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shiftbook/internal/client/client"
	"github.com/dmitrijs2005/shiftbook/internal/client/models"
	"github.com/dmitrijs2005/shiftbook/internal/client/repositories/days"
	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/logging"
)

// Status is the aggregate sync state shown to the user.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

// SyncService reconciles the local store against the shift service: a
// periodic push of dirty records and a pull-merge on date focus or
// reconnect. One instance owns all sync traffic for one local store.
type SyncService struct {
	client client.Client
	repo   days.Repository
	logger logging.Logger

	// savedDelay is how long the "saved" status stays visible before
	// reverting to idle.
	savedDelay time.Duration

	mu       sync.Mutex
	inFlight bool
	status   Status
	onStatus []func(Status)
	online   bool
}

func NewSyncService(c client.Client, repo days.Repository, logger logging.Logger, savedDelay time.Duration) *SyncService {
	return &SyncService{
		client:     c,
		repo:       repo,
		logger:     logger,
		savedDelay: savedDelay,
		status:     StatusIdle,
	}
}

// OnStatusChange registers a callback invoked on every status transition.
func (s *SyncService) OnStatusChange(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = append(s.onStatus, fn)
}

// Status returns the current aggregate sync status.
func (s *SyncService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SyncService) setStatus(st Status) {
	s.mu.Lock()
	if s.status == st {
		s.mu.Unlock()
		return
	}
	s.status = st
	fns := make([]func(Status), len(s.onStatus))
	copy(fns, s.onStatus)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// Run executes the push scheduler until ctx is cancelled: one PushDirty per
// tick, with overlapping runs prevented by the in-flight guard.
func (s *SyncService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.PushDirty(ctx); err != nil {
				s.logger.Warn(ctx, "push batch failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// PushDirty uploads all dirty records sequentially, one at a time. A network
// failure aborts the batch and leaves the remaining records dirty for the
// next tick. Safety-gate blocks are not errors: the suspicious local state
// is discarded in favor of whatever the server already has.
func (s *SyncService) PushDirty(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	dirty, err := s.repo.ListDirty(ctx)
	if err != nil {
		return fmt.Errorf("error listing dirty days: %w", err)
	}
	if len(dirty) == 0 {
		return nil
	}

	s.setStatus(StatusSyncing)

	for _, rec := range dirty {
		if err := s.pushOne(ctx, rec); err != nil {
			s.setStatus(StatusError)
			return err
		}
	}

	s.setStatus(StatusSaved)
	if s.savedDelay > 0 {
		time.AfterFunc(s.savedDelay, func() {
			s.mu.Lock()
			stillSaved := s.status == StatusSaved
			s.mu.Unlock()
			if stillSaved {
				s.setStatus(StatusIdle)
			}
		})
	}
	return nil
}

// pushOne uploads a single record. Every state transition after the network
// round trip is conditional on the row still carrying the clock value that
// was pushed: an edit saved while the upload was in flight stays dirty and
// goes out on the next cycle instead of being overwritten by the stale
// snapshot.
func (s *SyncService) pushOne(ctx context.Context, rec *models.DayRecord) error {
	if rec.Deleted {
		if err := s.client.DeleteDay(ctx, rec.Date); err != nil {
			return fmt.Errorf("error deleting remote day %s: %w", rec.Date, err)
		}
		purged, err := s.repo.PurgeDeleted(ctx, rec.Date, rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error purging day %s: %w", rec.Date, err)
		}
		if !purged {
			s.logger.Debug(ctx, "day re-created during delete, kept", "date", rec.Date)
		}
		return nil
	}

	if !AuthorizeUpload(rec) {
		// Discarded local glitch: stop retrying a state judged
		// non-authoritative, without touching the network.
		s.logger.Warn(ctx, "upload blocked by safety gate", "date", rec.Date)
		if _, err := s.repo.ClearDirty(ctx, rec.Date, rec.UpdatedAt); err != nil {
			return fmt.Errorf("error discarding blocked day %s: %w", rec.Date, err)
		}
		return nil
	}

	res, err := s.client.PushDay(ctx, rec)
	if err != nil {
		if errors.Is(err, common.ErrEmptySegmentsRejected) {
			// The server's own safety net fired. Same treatment as a
			// local block: drop the dirty flag, keep the server state.
			s.logger.Warn(ctx, "upload rejected by remote safety net", "date", rec.Date)
			if _, err := s.repo.ClearDirty(ctx, rec.Date, rec.UpdatedAt); err != nil {
				return fmt.Errorf("error discarding rejected day %s: %w", rec.Date, err)
			}
			return nil
		}
		return fmt.Errorf("error pushing day %s: %w", rec.Date, err)
	}

	acked, err := s.repo.AcknowledgePush(ctx, rec.Date, rec.UpdatedAt, res.ID, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error storing ack for day %s: %w", rec.Date, err)
	}
	if !acked {
		s.logger.Debug(ctx, "day edited during push, deferred to next cycle", "date", rec.Date)
	}
	return nil
}

// PullDay fetches the remote day and merges it into the local store.
//
// Merge policy: absent local adopts remote; a clean local follows
// last-writer-wins on the updated_at clock; a dirty local normally wins —
// except the anti-nuke case, where an empty dirty local is overwritten by a
// non-empty remote because losing real server data to a client glitch is
// worse than losing a stale local edit.
func (s *SyncService) PullDay(ctx context.Context, date string) error {
	local, err := s.repo.Get(ctx, date)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		local = nil
	}

	payload, err := s.client.FetchDay(ctx, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error fetching day %s: %w", date, err)
	}
	remote := payload.Record()

	switch {
	case local == nil:
		return s.repo.Save(ctx, remote)

	case !local.Dirty:
		if remote.UpdatedAt > local.UpdatedAt {
			return s.repo.Save(ctx, remote)
		}
		return nil

	case len(local.Segments) == 0 && len(remote.Segments) > 0:
		// Anti-nuke: an empty dirty local against a non-empty remote is
		// treated as a corrupted client state, not an intentional edit.
		s.logger.Warn(ctx, "anti-nuke: adopting remote over empty dirty local", "date", date)
		return s.repo.Save(ctx, remote)

	default:
		// Local edits are authoritative; the push scheduler will upload
		// them.
		return nil
	}
}

// RunOnlineWatcher pings the service on an interval and, on an
// offline-to-online transition, pulls the focused date and pushes dirty
// records right away instead of waiting for the next scheduler tick.
func (s *SyncService) RunOnlineWatcher(ctx context.Context, interval time.Duration, focusedDate func() string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := s.client.Ping(pingCtx)
			cancel()

			s.mu.Lock()
			wasOnline := s.online
			s.online = err == nil
			nowOnline := s.online
			s.mu.Unlock()

			if !wasOnline && nowOnline {
				s.logger.Info(ctx, "back online")
				if date := focusedDate(); date != "" {
					if err := s.PullDay(ctx, date); err != nil {
						s.logger.Warn(ctx, "pull on reconnect failed", "date", date, "error", err)
					}
				}
				if err := s.PushDirty(ctx); err != nil {
					s.logger.Warn(ctx, "push on reconnect failed", "error", err)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// Online reports the last observed connectivity state.
func (s *SyncService) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}
