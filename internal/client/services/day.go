// Package services contains the client-side business logic: the edit-surface
// adapter (DayService), the sync engine (SyncService) and auth plumbing.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shiftbook/internal/client/models"
	"github.com/dmitrijs2005/shiftbook/internal/client/repositories/days"
	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/logging"
)

// DayService is the adapter between the edit surface and the local store.
// Writes always succeed locally; the sync engine pushes them later.
type DayService struct {
	repo     days.Repository
	logger   logging.Logger
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]models.DayRecord
}

// NewDayService returns a DayService. debounce is the input-inactivity window
// that coalesces rapid keystrokes into one durable write.
func NewDayService(repo days.Repository, logger logging.Logger, debounce time.Duration) *DayService {
	return &DayService{
		repo:     repo,
		logger:   logger,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]models.DayRecord),
	}
}

// Get returns the stored record for a date, or common.ErrorNotFound.
func (s *DayService) Get(ctx context.Context, date string) (*models.DayRecord, error) {
	return s.repo.Get(ctx, date)
}

// Save persists an edited record immediately: it marks it dirty, bumps the
// clock and upserts. A day the user opened but never actually edited is not
// stored at all, so it never becomes a sync obligation.
func (s *DayService) Save(ctx context.Context, rec *models.DayRecord) error {
	if rec.IsEmpty() && !rec.Deleted {
		if _, err := s.repo.Get(ctx, rec.Date); errors.Is(err, common.ErrorNotFound) {
			return nil
		}
	}

	rec.Touch()
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

// SaveDebounced schedules Save after the debounce window, replacing any
// pending save for the same date. The write happens on a timer goroutine.
func (s *DayService) SaveDebounced(rec *models.DayRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[rec.Date]; ok {
		t.Stop()
	}
	s.pending[rec.Date] = *rec

	date := rec.Date
	s.timers[date] = time.AfterFunc(s.debounce, func() {
		s.flushOne(context.Background(), date)
	})
}

func (s *DayService) flushOne(ctx context.Context, date string) {
	s.mu.Lock()
	rec, ok := s.pending[date]
	delete(s.pending, date)
	delete(s.timers, date)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := s.Save(ctx, &rec); err != nil {
		s.logger.Error(ctx, "debounced save failed", "date", date, "error", err)
	}
}

// Flush writes out all pending debounced saves immediately. Used on shutdown
// and before an export.
func (s *DayService) Flush(ctx context.Context) {
	s.mu.Lock()
	dates := make([]string, 0, len(s.pending))
	for date, t := range s.timers {
		t.Stop()
		dates = append(dates, date)
	}
	s.mu.Unlock()

	for _, date := range dates {
		s.flushOne(ctx, date)
	}
}

// Delete marks a day for removal. The tombstone stays dirty until the
// deletion has been acknowledged remotely; only then is the row purged.
func (s *DayService) Delete(ctx context.Context, date string) error {
	rec, err := s.repo.Get(ctx, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	rec.Deleted = true
	rec.Touch()
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("error deleting day: %w", err)
	}
	return nil
}

// Reset performs the explicit full day reset: segments and ancillary lists
// are cleared and ForceClear authorizes the otherwise-blocked empty upload.
func (s *DayService) Reset(ctx context.Context, date string) error {
	rec, err := s.repo.Get(ctx, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	rec.Segments = nil
	rec.GuestRides = nil
	rec.WaitingTimes = nil
	rec.Fields = models.ShiftFields{}
	rec.ForceClear = true
	rec.Touch()
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("error resetting day: %w", err)
	}
	return nil
}
