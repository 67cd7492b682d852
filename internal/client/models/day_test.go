package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRecord_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  DayRecord
		want bool
	}{
		{
			name: "zero_value",
			rec:  DayRecord{Date: "2025-06-01"},
			want: true,
		},
		{
			name: "only_pause_set",
			rec:  DayRecord{Date: "2025-06-01", Fields: ShiftFields{Pause: 30}},
			want: true,
		},
		{
			name: "blank_segment_only",
			rec:  DayRecord{Segments: []Segment{{}}},
			want: true,
		},
		{
			name: "segment_with_from_code",
			rec:  DayRecord{Segments: []Segment{{FromCode: "AA"}}},
			want: false,
		},
		{
			name: "guest_ride_present",
			rec:  DayRecord{GuestRides: []GuestRide{{FromCode: "AA", ToCode: "BB"}}},
			want: false,
		},
		{
			name: "waiting_time_present",
			rec:  DayRecord{WaitingTimes: []WaitingPeriod{{Start: "08:00", End: "08:30"}}},
			want: false,
		},
		{
			name: "duty_start_set",
			rec:  DayRecord{Fields: ShiftFields{DutyStart: "06:15"}},
			want: false,
		},
		{
			name: "distance_set",
			rec:  DayRecord{Fields: ShiftFields{DistanceKm: 120}},
			want: false,
		},
		{
			name: "flag_set",
			rec:  DayRecord{Fields: ShiftFields{Sick: true}},
			want: false,
		},
		{
			name: "note_whitespace_only",
			rec:  DayRecord{Fields: ShiftFields{Note: "   "}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.IsEmpty())
		})
	}
}

func TestDayRecord_Touch(t *testing.T) {
	r := DayRecord{Date: "2025-06-01"}
	r.Touch()
	require.True(t, r.Dirty)
	first := r.UpdatedAt
	require.Positive(t, first)

	// a second touch in the same millisecond still advances the clock
	r.Touch()
	assert.Greater(t, r.UpdatedAt, first)
}

func TestSegment_IsBlank(t *testing.T) {
	assert.True(t, Segment{}.IsBlank())
	assert.False(t, Segment{Note: "via yard"}.IsBlank())
	assert.False(t, Segment{VehicleNumber: "185 042"}.IsBlank())
}
