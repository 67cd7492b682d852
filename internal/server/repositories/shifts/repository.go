package shifts

import (
	"context"

	"github.com/dmitrijs2005/shiftbook/internal/server/models"
)

// Repository describes per-user, per-date shift storage.
type Repository interface {
	// GetByDate returns the shift of one user for one date, or
	// common.ErrorNotFound.
	GetByDate(ctx context.Context, userID, date string) (*models.Shift, error)

	// Upsert inserts or replaces the shift keyed by (user, date) and
	// returns the stored row with its identifier.
	Upsert(ctx context.Context, shift *models.Shift) (*models.Shift, error)

	// DeleteByDate removes the shift. Deleting an absent date is not an
	// error.
	DeleteByDate(ctx context.Context, userID, date string) error
}
