// Package days provides the SQLite-backed local store for day records.
// Serialization of nested lists is confined to this boundary: the rest of
// the code only ever sees typed slices.
package days

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shiftbook/internal/client/models"
	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/dbx"
)

// SQLiteRepository implements Repository and Watcher over a dbx.DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX

	mu      sync.Mutex
	subs    map[string]map[int]func(models.DayRecord)
	nextSub int
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, subs: make(map[string]map[int]func(models.DayRecord))}
}

// decodeList unmarshals a stored JSON list into v. A malformed value is
// treated as an empty list, never as an error: a single corrupt column must
// not make a whole day unreadable.
func decodeList(data string, v any) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), v)
}

func encodeList(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

// Save upserts a record by date.
func (r *SQLiteRepository) Save(ctx context.Context, rec *models.DayRecord) error {
	segments, err := encodeList(rec.Segments)
	if err != nil {
		return err
	}
	guestRides, err := encodeList(rec.GuestRides)
	if err != nil {
		return err
	}
	waitingTimes, err := encodeList(rec.WaitingTimes)
	if err != nil {
		return err
	}

	serverID := sql.NullString{String: rec.ServerID, Valid: rec.ServerID != ""}

	query := `INSERT INTO days (date, duty_start, duty_end, pause, distance_km, train_number, note,
			normal_duty, sick, vacation, segments, guest_rides, waiting_times,
			updated_at, dirty, deleted, server_id, force_clear)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			duty_start = excluded.duty_start,
			duty_end = excluded.duty_end,
			pause = excluded.pause,
			distance_km = excluded.distance_km,
			train_number = excluded.train_number,
			note = excluded.note,
			normal_duty = excluded.normal_duty,
			sick = excluded.sick,
			vacation = excluded.vacation,
			segments = excluded.segments,
			guest_rides = excluded.guest_rides,
			waiting_times = excluded.waiting_times,
			updated_at = excluded.updated_at,
			dirty = excluded.dirty,
			deleted = excluded.deleted,
			server_id = excluded.server_id,
			force_clear = excluded.force_clear
	`
	f := rec.Fields
	_, err = r.db.ExecContext(ctx, query,
		rec.Date, f.DutyStart, f.DutyEnd, f.Pause, f.DistanceKm, f.TrainNumber, f.Note,
		f.NormalDuty, f.Sick, f.Vacation, segments, guestRides, waitingTimes,
		rec.UpdatedAt, rec.Dirty, rec.Deleted, serverID, rec.ForceClear)
	if err != nil {
		return fmt.Errorf("failed to upsert day: %w", err)
	}

	r.notify(*rec)
	return nil
}

const dayColumns = `date, duty_start, duty_end, pause, distance_km, train_number, note,
	normal_duty, sick, vacation, segments, guest_rides, waiting_times,
	updated_at, dirty, deleted, server_id, force_clear`

func scanDay(scan func(dest ...any) error) (*models.DayRecord, error) {
	rec := &models.DayRecord{}
	var segments, guestRides, waitingTimes string
	var serverID sql.NullString

	err := scan(&rec.Date, &rec.Fields.DutyStart, &rec.Fields.DutyEnd, &rec.Fields.Pause,
		&rec.Fields.DistanceKm, &rec.Fields.TrainNumber, &rec.Fields.Note,
		&rec.Fields.NormalDuty, &rec.Fields.Sick, &rec.Fields.Vacation,
		&segments, &guestRides, &waitingTimes,
		&rec.UpdatedAt, &rec.Dirty, &rec.Deleted, &serverID, &rec.ForceClear)
	if err != nil {
		return nil, err
	}

	decodeList(segments, &rec.Segments)
	decodeList(guestRides, &rec.GuestRides)
	decodeList(waitingTimes, &rec.WaitingTimes)
	rec.ServerID = serverID.String

	return rec, nil
}

// Get returns the record for one date or common.ErrorNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, date string) (*models.DayRecord, error) {
	query := `SELECT ` + dayColumns + ` FROM days WHERE date = ?`
	row := r.db.QueryRowContext(ctx, query, date)

	rec, err := scanDay(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

// ListDirty returns all records awaiting a push, tombstones included.
func (r *SQLiteRepository) ListDirty(ctx context.Context) ([]*models.DayRecord, error) {
	query := `SELECT ` + dayColumns + ` FROM days WHERE dirty = 1 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty days: %w", err)
	}
	defer rows.Close()

	var result []*models.DayRecord
	for rows.Next() {
		rec, err := scanDay(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AcknowledgePush applies a push acknowledgement as a compare-and-set on the
// updated_at clock, so an edit saved while the upload was in flight keeps its
// dirty flag and its new content.
func (r *SQLiteRepository) AcknowledgePush(ctx context.Context, date string, pushedAt int64, serverID string, ackUpdatedAt int64) (bool, error) {
	query := `UPDATE days
		SET dirty = 0, force_clear = 0, server_id = ?, updated_at = ?
		WHERE date = ? AND updated_at = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, serverID, ackUpdatedAt, date, pushedAt)
	if err != nil {
		return false, fmt.Errorf("failed to store push ack: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if rec, err := r.Get(ctx, date); err == nil {
		r.notify(*rec)
	}
	return true, nil
}

// ClearDirty drops the dirty flag iff the row still carries ifUpdatedAt.
func (r *SQLiteRepository) ClearDirty(ctx context.Context, date string, ifUpdatedAt int64) (bool, error) {
	query := `UPDATE days SET dirty = 0 WHERE date = ? AND updated_at = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, date, ifUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if rec, err := r.Get(ctx, date); err == nil {
		r.notify(*rec)
	}
	return true, nil
}

// PurgeDeleted removes an acknowledged tombstone iff the row is still the
// deleted state identified by ifUpdatedAt.
func (r *SQLiteRepository) PurgeDeleted(ctx context.Context, date string, ifUpdatedAt int64) (bool, error) {
	query := `DELETE FROM days WHERE date = ? AND updated_at = ? AND deleted = 1`
	res, err := r.db.ExecContext(ctx, query, date, ifUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to purge tombstone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	r.notify(models.DayRecord{Date: date, Deleted: true})
	return true, nil
}

// Delete physically removes the row for a date. Deleting an absent date is
// not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, date string) error {
	query := `DELETE FROM days WHERE date = ?`
	if _, err := r.db.ExecContext(ctx, query, date); err != nil {
		return fmt.Errorf("failed to delete day: %w", err)
	}

	r.notify(models.DayRecord{Date: date, Deleted: true})
	return nil
}

// Subscribe registers fn for change notifications on one date. Callbacks run
// synchronously on the mutating goroutine, after the row has been written.
func (r *SQLiteRepository) Subscribe(date string, fn func(models.DayRecord)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	if r.subs[date] == nil {
		r.subs[date] = make(map[int]func(models.DayRecord))
	}
	r.subs[date][id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[date], id)
	}
}

func (r *SQLiteRepository) notify(rec models.DayRecord) {
	r.mu.Lock()
	fns := make([]func(models.DayRecord), 0, len(r.subs[rec.Date]))
	for _, fn := range r.subs[rec.Date] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(rec)
	}
}
