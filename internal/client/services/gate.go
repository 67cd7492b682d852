package services

import "github.com/dmitrijs2005/shiftbook/internal/client/models"

// AuthorizeUpload is the safety gate: it blocks any upload that would
// replace a day's route segments with none, unless the user explicitly
// confirmed a full day reset (ForceClear).
//
// A day with shift fields set but zero segments is almost always a transient
// client-side glitch (a form reset mid-edit), not an intentional clearing of
// a real schedule. The shift service enforces the same rule independently;
// checking here just avoids a doomed round trip.
func AuthorizeUpload(rec *models.DayRecord) bool {
	if len(rec.Segments) == 0 && !rec.ForceClear {
		return false
	}
	return true
}
