// Package models defines the per-day shift record and its parts: the unit of
// synchronization between the local store and the shift service.
package models

import (
	"strings"
	"time"
)

// Segment is one route leg of a duty day. Order within a day is significant
// and must survive a push/pull round trip.
type Segment struct {
	FromCode      string `json:"from_code"`
	ToCode        string `json:"to_code"`
	TrainNumber   string `json:"train_number,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
	Departure     string `json:"departure,omitempty"`
	Arrival       string `json:"arrival,omitempty"`
	Note          string `json:"note,omitempty"`
}

// IsBlank reports whether every field of the segment is empty.
func (s Segment) IsBlank() bool {
	return s.FromCode == "" && s.ToCode == "" && s.TrainNumber == "" &&
		s.VehicleNumber == "" && s.Departure == "" && s.Arrival == "" && s.Note == ""
}

// GuestRide records a ride taken as a passenger (deadheading).
type GuestRide struct {
	FromCode    string `json:"from_code"`
	ToCode      string `json:"to_code"`
	TrainNumber string `json:"train_number,omitempty"`
	Note        string `json:"note,omitempty"`
}

// WaitingPeriod records paid waiting time between duties.
type WaitingPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note,omitempty"`
}

// ShiftFields holds the scalar shift attributes of one day. The sync engine
// treats them as an opaque value bag; only the emptiness predicate looks
// inside.
type ShiftFields struct {
	DutyStart   string `json:"duty_start,omitempty"`
	DutyEnd     string `json:"duty_end,omitempty"`
	Pause       int    `json:"pause,omitempty"`
	DistanceKm  int    `json:"distance_km,omitempty"`
	TrainNumber string `json:"train_number,omitempty"`
	Note        string `json:"note,omitempty"`
	NormalDuty  bool   `json:"normal_duty,omitempty"`
	Sick        bool   `json:"sick,omitempty"`
	Vacation    bool   `json:"vacation,omitempty"`
}

// DayRecord is the unit of sync: one calendar date of shift data plus the
// bookkeeping flags driving the push/pull machinery.
//
// Invariants:
//   - every mutation of Fields/Segments/GuestRides/WaitingTimes bumps
//     UpdatedAt and sets Dirty
//   - Dirty is cleared only after the remote service acknowledged that
//     exact state
//   - a Deleted+Dirty record is pushed as a deletion before being purged
type DayRecord struct {
	Date         string          `json:"date"`
	Fields       ShiftFields     `json:"fields"`
	Segments     []Segment       `json:"segments"`
	GuestRides   []GuestRide     `json:"guest_rides"`
	WaitingTimes []WaitingPeriod `json:"waiting_times"`

	// UpdatedAt is milliseconds since epoch of the last local or remote
	// mutation; the Lamport-style clock for last-writer-wins.
	UpdatedAt int64 `json:"updated_at"`

	Dirty   bool `json:"dirty"`
	Deleted bool `json:"deleted"`

	// ServerID is assigned by the shift service on first push; empty for
	// records created locally and never yet pushed.
	ServerID string `json:"server_id,omitempty"`

	// ForceClear authorizes an upload with zero segments for this date.
	// Reset after a successful push.
	ForceClear bool `json:"force_clear,omitempty"`
}

// NowMillis returns the current wall clock in milliseconds since epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Touch marks the record as locally mutated: Dirty is set and UpdatedAt is
// bumped, never moving backwards even against a skewed clock.
func (r *DayRecord) Touch() {
	now := NowMillis()
	if now <= r.UpdatedAt {
		now = r.UpdatedAt + 1
	}
	r.UpdatedAt = now
	r.Dirty = true
}

// IsEmpty reports whether the user never actually edited this day: no
// segment with any non-blank field, no guest rides or waiting times, all
// scalars blank/zero and no flag set. Pause is deliberately excluded — an
// auto-suggested pause value alone does not count as an edit.
func (r *DayRecord) IsEmpty() bool {
	for _, s := range r.Segments {
		if !s.IsBlank() {
			return false
		}
	}
	if len(r.GuestRides) > 0 || len(r.WaitingTimes) > 0 {
		return false
	}
	f := r.Fields
	if strings.TrimSpace(f.DutyStart) != "" || strings.TrimSpace(f.DutyEnd) != "" {
		return false
	}
	if f.DistanceKm != 0 || strings.TrimSpace(f.TrainNumber) != "" || strings.TrimSpace(f.Note) != "" {
		return false
	}
	if f.NormalDuty || f.Sick || f.Vacation {
		return false
	}
	return true
}
