// Package shifts provides the PostgreSQL-backed repository for server-side
// shift persistence. Nested lists are stored as JSONB columns; encoding is
// confined to this boundary.
package shifts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/dbx"
	"github.com/dmitrijs2005/shiftbook/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode error: %w", err)
	}
	return b, nil
}

func decode(b []byte, v any) {
	if len(b) == 0 {
		return
	}
	// A malformed column degrades to an empty list rather than making the
	// whole day unreadable.
	_ = json.Unmarshal(b, v)
}

// Upsert inserts or replaces a shift by its (user_id, shift_date) key.
func (r *PostgresRepository) Upsert(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	fields, err := encode(shift.Fields)
	if err != nil {
		return nil, err
	}
	segments, err := encode(shift.Segments)
	if err != nil {
		return nil, err
	}
	guestRides, err := encode(shift.GuestRides)
	if err != nil {
		return nil, err
	}
	waitingTimes, err := encode(shift.WaitingTimes)
	if err != nil {
		return nil, err
	}

	id := shift.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO shifts (id, user_id, shift_date, fields, segments, guest_rides, waiting_times, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, shift_date)
		DO UPDATE SET
			fields = EXCLUDED.fields,
			segments = EXCLUDED.segments,
			guest_rides = EXCLUDED.guest_rides,
			waiting_times = EXCLUDED.waiting_times,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	var storedID string
	err = r.db.QueryRowContext(ctx, query,
		id, shift.UserID, shift.Date, fields, segments, guestRides, waitingTimes, shift.UpdatedAt).Scan(&storedID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	stored := *shift
	stored.ID = storedID
	return &stored, nil
}

// GetByDate returns the shift of one user for one date.
func (r *PostgresRepository) GetByDate(ctx context.Context, userID, date string) (*models.Shift, error) {
	query := `
		SELECT id, user_id, shift_date, fields, segments, guest_rides, waiting_times, updated_at
		FROM shifts
		WHERE user_id = $1 AND shift_date = $2
	`
	shift := &models.Shift{}
	var fields, segments, guestRides, waitingTimes []byte
	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&shift.ID, &shift.UserID, &shift.Date,
		&fields, &segments, &guestRides, &waitingTimes, &shift.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	decode(fields, &shift.Fields)
	decode(segments, &shift.Segments)
	decode(guestRides, &shift.GuestRides)
	decode(waitingTimes, &shift.WaitingTimes)

	return shift, nil
}

// DeleteByDate removes the shift row; idempotent.
func (r *PostgresRepository) DeleteByDate(ctx context.Context, userID, date string) error {
	query := `
		DELETE FROM shifts
		WHERE user_id = $1 AND shift_date = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, date); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
