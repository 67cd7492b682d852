// Package models defines the server-side persistence types.
package models

// Segment is one route leg of a stored duty day; order is preserved.
type Segment struct {
	FromCode      string `json:"from_code"`
	ToCode        string `json:"to_code"`
	TrainNumber   string `json:"train_number,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
	Departure     string `json:"departure,omitempty"`
	Arrival       string `json:"arrival,omitempty"`
	Note          string `json:"note,omitempty"`
}

type GuestRide struct {
	FromCode    string `json:"from_code"`
	ToCode      string `json:"to_code"`
	TrainNumber string `json:"train_number,omitempty"`
	Note        string `json:"note,omitempty"`
}

type WaitingPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note,omitempty"`
}

// ShiftFields mirrors the scalar shift attributes on the wire.
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

// Shift is one stored day of one user. The (UserID, Date) pair is unique.
type Shift struct {
	ID           string
	UserID       string
	Date         string
	Fields       ShiftFields
	Segments     []Segment
	GuestRides   []GuestRide
	WaitingTimes []WaitingPeriod

	// UpdatedAt is the client-supplied sync clock, stored and echoed as-is
	// so pushes are idempotent and last-writer-wins stays consistent.
	UpdatedAt int64
}
