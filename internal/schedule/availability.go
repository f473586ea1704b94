package schedule

import (
	"salonbook/internal/models"
	"salonbook/internal/timeutil"
)

// Classify tags each slot for one day: busy when an active booking starts
// at the slot start, break when the slot start falls inside a break, free
// otherwise. dayBookings must already be filtered to the day in question.
func Classify(slots []models.Slot, dayBookings []models.Booking, breaks []models.Break) []models.TaggedSlot {
	tagged := make([]models.TaggedSlot, 0, len(slots))
	for _, slot := range slots {
		ts := models.TaggedSlot{Slot: slot, State: models.SlotFree}
		if b := bookingAt(dayBookings, slot.Start); b != nil {
			ts.State = models.SlotBusy
			ts.Booking = b
		} else if inBreak(slot.Start, breaks) {
			ts.State = models.SlotBreak
		}
		tagged = append(tagged, ts)
	}
	return tagged
}

// ConflictsAt reports whether an active booking other than excludeID
// occupies the exact date and start time. Collision is keyed on start-time
// equality only; archived bookings never block a slot.
func ConflictsAt(bookings []models.Booking, dateKey, clock, excludeID string) bool {
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Status == models.StatusActive && b.Date == dateKey && b.Time == clock {
			return true
		}
	}
	return false
}

func bookingAt(bookings []models.Booking, start string) *models.Booking {
	for i := range bookings {
		if bookings[i].Status == models.StatusActive && bookings[i].Time == start {
			return &bookings[i]
		}
	}
	return nil
}

func inBreak(start string, breaks []models.Break) bool {
	for _, b := range breaks {
		if timeutil.IsBetween(start, b.Start, b.End) {
			return true
		}
	}
	return false
}
