package schedule

import (
	"salonbook/internal/models"
	"salonbook/internal/timeutil"
)

// Generate tiles the work day with fixed-duration slots starting at
// workStart. A slot touching a break is suppressed, but the cursor still
// advances by the full stride, so a break shrinks the slot count rather
// than shifting later slot boundaries.
func Generate(workStart, workEnd string, duration int, breaks []models.Break) []models.Slot {
	if duration <= 0 {
		return nil
	}

	var slots []models.Slot
	cursor := workStart
	endMins := timeutil.ToMinutes(workEnd)

	for timeutil.ToMinutes(cursor)+duration <= endMins {
		slotEnd := timeutil.AddMinutes(cursor, duration)
		if !overlapsBreak(cursor, slotEnd, breaks) {
			slots = append(slots, models.Slot{Start: cursor, End: slotEnd, Duration: duration})
		}
		cursor = slotEnd
	}

	return slots
}

// overlapsBreak suppresses a slot whose interior intersects a break.
// Touching boundaries do not intersect: a slot ending exactly at a break's
// start (or starting at its end) is kept.
func overlapsBreak(start, end string, breaks []models.Break) bool {
	startMins := timeutil.ToMinutes(start)
	endMins := timeutil.ToMinutes(end)
	for _, b := range breaks {
		if startMins < timeutil.ToMinutes(b.End) && endMins > timeutil.ToMinutes(b.Start) {
			return true
		}
	}
	return false
}
