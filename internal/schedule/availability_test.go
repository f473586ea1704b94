package schedule

import (
	"testing"

	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	breaks := []models.Break{{Start: "13:00", End: "14:00"}}
	slots := Generate("09:00", "15:00", 60, nil)
	bookings := []models.Booking{
		{ID: "b1", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
		{ID: "b2", Date: "2025-03-07", Time: "11:00", Status: models.StatusArchived},
	}

	tagged := Classify(slots, bookings, breaks)
	require.Len(t, tagged, len(slots))

	byStart := make(map[string]models.TaggedSlot, len(tagged))
	for _, ts := range tagged {
		byStart[ts.Slot.Start] = ts
	}

	assert.Equal(t, models.SlotBusy, byStart["10:00"].State)
	require.NotNil(t, byStart["10:00"].Booking)
	assert.Equal(t, "b1", byStart["10:00"].Booking.ID)

	assert.Equal(t, models.SlotFree, byStart["11:00"].State, "archived bookings never occupy a slot")
	assert.Equal(t, models.SlotBreak, byStart["13:00"].State)
	assert.Equal(t, models.SlotFree, byStart["09:00"].State)
	assert.Nil(t, byStart["09:00"].Booking)
}

func TestClassifyBusyWinsOverBreak(t *testing.T) {
	breaks := []models.Break{{Start: "10:00", End: "11:00"}}
	slots := []models.Slot{{Start: "10:00", End: "11:00", Duration: 60}}
	bookings := []models.Booking{
		{ID: "b1", Time: "10:00", Status: models.StatusActive},
	}

	tagged := Classify(slots, bookings, breaks)
	require.Len(t, tagged, 1)
	assert.Equal(t, models.SlotBusy, tagged[0].State)
}

func TestConflictsAt(t *testing.T) {
	bookings := []models.Booking{
		{ID: "b1", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
		{ID: "b2", Date: "2025-03-07", Time: "11:00", Status: models.StatusArchived},
	}

	assert.True(t, ConflictsAt(bookings, "2025-03-07", "10:00", ""))
	assert.False(t, ConflictsAt(bookings, "2025-03-07", "10:00", "b1"), "excluded booking does not conflict with itself")
	assert.False(t, ConflictsAt(bookings, "2025-03-07", "11:00", ""), "archived bookings do not block")
	assert.False(t, ConflictsAt(bookings, "2025-03-08", "10:00", ""), "other days are independent")
	assert.False(t, ConflictsAt(bookings, "2025-03-07", "10:30", ""), "collision is exact start-time equality")
}
