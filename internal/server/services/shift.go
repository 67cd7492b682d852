package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/server/models"
	"github.com/dmitrijs2005/shiftbook/internal/server/repositories/repomanager"
)

// ShiftService stores and serves per-user day records. It is the remote
// boundary of the sync protocol: writes are full-state replacements keyed by
// (user, date), and the client-supplied updated_at is stored and echoed back
// so repeated pushes of the same state stay idempotent.
type ShiftService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewShiftService constructs a ShiftService.
func NewShiftService(db *sql.DB, m repomanager.RepositoryManager) *ShiftService {
	return &ShiftService{db: db, repomanager: m}
}

// GetByDate returns the user's shift for a date, or common.ErrorNotFound.
func (s *ShiftService) GetByDate(ctx context.Context, userID, date string) (*models.Shift, error) {
	repo := s.repomanager.Shifts(s.db)
	return repo.GetByDate(ctx, userID, date)
}

// Put upserts the user's shift for a date. A normal duty day with no ride
// segments is rejected with ErrEmptySegmentsRejected unless the client set
// force_clear, which marks the wipe as deliberate.
func (s *ShiftService) Put(ctx context.Context, userID string, shift *models.Shift, forceClear bool) (*models.Shift, error) {
	if shift.Fields.NormalDuty && len(shift.Segments) == 0 && !forceClear {
		return nil, common.ErrEmptySegmentsRejected
	}

	shift.UserID = userID
	repo := s.repomanager.Shifts(s.db)
	return repo.Upsert(ctx, shift)
}

// DeleteByDate removes the user's shift for a date. Deleting an absent day
// is not an error.
func (s *ShiftService) DeleteByDate(ctx context.Context, userID, date string) error {
	repo := s.repomanager.Shifts(s.db)
	return repo.DeleteByDate(ctx, userID, date)
}
