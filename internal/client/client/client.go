// Package client talks to the remote shift service over HTTP/JSON. It owns
// the wire representation of a day record and the bearer-token handling,
// including the single refresh-and-retry on an expired access token.
package client

import (
	"context"

	"github.com/dmitrijs2005/shiftbook/internal/client/models"
)

// ShiftPayload is the scalar part of a day on the wire, carrying the
// remote identifier and the sync clock alongside the shift fields.
type ShiftPayload struct {
	models.ShiftFields
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	UpdatedAt int64  `json:"updated_at"`
}

// DayPayload is the full wire shape of one day record.
type DayPayload struct {
	Shift        ShiftPayload           `json:"shift"`
	Segments     []models.Segment       `json:"segments"`
	GuestRides   []models.GuestRide     `json:"guest_rides"`
	WaitingTimes []models.WaitingPeriod `json:"waiting_times"`

	// ForceClear is only meaningful on upload: it authorizes replacing a
	// day's segments with none.
	ForceClear bool `json:"force_clear,omitempty"`
}

// PushResult is the service acknowledgement of an upload.
type PushResult struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
}

// Client is the surface of the shift service the sync engine needs.
type Client interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error

	// FetchDay returns the remote day or common.ErrorNotFound.
	FetchDay(ctx context.Context, date string) (*DayPayload, error)

	// PushDay uploads the full record state. A safety-net rejection is
	// reported as common.ErrEmptySegmentsRejected.
	PushDay(ctx context.Context, rec *models.DayRecord) (*PushResult, error)

	// DeleteDay removes the remote day. Deleting an absent day succeeds.
	DeleteDay(ctx context.Context, date string) error

	// ExportUploadURL returns a storage key and a presigned PUT URL for
	// uploading an export file.
	ExportUploadURL(ctx context.Context) (key string, url string, err error)

	Ping(ctx context.Context) error
}

// Record normalizes the remote shape into the local one. The result is
// clean: Dirty=false, UpdatedAt and ServerID stamped from the remote.
func (p *DayPayload) Record() *models.DayRecord {
	return &models.DayRecord{
		Date:         p.Shift.Date,
		Fields:       p.Shift.ShiftFields,
		Segments:     p.Segments,
		GuestRides:   p.GuestRides,
		WaitingTimes: p.WaitingTimes,
		UpdatedAt:    p.Shift.UpdatedAt,
		ServerID:     p.Shift.ID,
		Dirty:        false,
	}
}

// PayloadFromRecord builds the upload shape for a local record.
func PayloadFromRecord(rec *models.DayRecord) *DayPayload {
	return &DayPayload{
		Shift: ShiftPayload{
			ShiftFields: rec.Fields,
			ID:          rec.ServerID,
			Date:        rec.Date,
			UpdatedAt:   rec.UpdatedAt,
		},
		Segments:     rec.Segments,
		GuestRides:   rec.GuestRides,
		WaitingTimes: rec.WaitingTimes,
		ForceClear:   rec.ForceClear,
	}
}
