package store

import (
	"context"
	"testing"
	"time"

	"salonbook/internal/events"
	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingStore(gw *fakeGateway, bus *recordingBus) *BookingStore {
	return NewBookingStore(gw, bus, discardLogger())
}

func TestBookingStoreLoad(t *testing.T) {
	gw := &fakeGateway{
		fetchBookings: func(ctx context.Context) []models.Booking {
			return []models.Booking{{ID: "b1"}, {ID: "b2"}}
		},
	}
	s := newBookingStore(gw, &recordingBus{})
	s.Load(context.Background())

	assert.Len(t, s.All(), 2)
}

func TestBookingsOnSortsByTime(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	s.bookings = []models.Booking{
		{ID: "b2", Date: "2025-03-07", Time: "14:00"},
		{ID: "b1", Date: "2025-03-07", Time: "09:00"},
		{ID: "b3", Date: "2025-03-08", Time: "10:00"},
	}

	day := s.BookingsOn("2025-03-07")
	require.Len(t, day, 2)
	assert.Equal(t, "b1", day[0].ID)
	assert.Equal(t, "b2", day[1].ID)
}

func TestTodayBookingsFiltersElapsedAndArchived(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }
	s.bookings = []models.Booking{
		{ID: "past", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
		{ID: "upcoming", Date: "2025-03-07", Time: "15:00", Status: models.StatusActive},
		{ID: "archived", Date: "2025-03-07", Time: "16:00", Status: models.StatusArchived},
		{ID: "tomorrow", Date: "2025-03-08", Time: "10:00", Status: models.StatusActive},
	}

	today := s.TodayBookings()
	require.Len(t, today, 1)
	assert.Equal(t, "upcoming", today[0].ID)
}

func TestCreateBooking(t *testing.T) {
	bus := &recordingBus{}
	s := newBookingStore(&fakeGateway{}, bus)

	booking, err := s.Create(context.Background(), models.BookingInput{
		Date: "2025-03-07", Time: "10:00", ServiceType: models.ServiceMassage, Procedure: "p1", Phone: "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", booking.ID, "insert waits for the server-assigned id")
	assert.Len(t, s.All(), 1)
	assert.Contains(t, bus.published(), events.EventBookingCreated)
}

func TestCreateBookingValidation(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	ctx := context.Background()
	valid := models.BookingInput{
		Date: "2025-03-07", Time: "10:00", ServiceType: models.ServiceMassage, Procedure: "p1", Phone: "1234",
	}

	t.Run("BadPhone", func(t *testing.T) {
		input := valid
		input.Phone = "123456"
		_, err := s.Create(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("MissingProcedure", func(t *testing.T) {
		input := valid
		input.Procedure = ""
		_, err := s.Create(ctx, input)
		assert.ErrorIs(t, err, ErrMissingProcedure)
	})

	t.Run("UnknownService", func(t *testing.T) {
		input := valid
		input.ServiceType = "nails"
		_, err := s.Create(ctx, input)
		assert.ErrorIs(t, err, ErrUnknownService)
	})

	assert.Empty(t, s.All(), "rejected input never mutates the collection")
}

func TestCreateBookingSlotTaken(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	s.bookings = []models.Booking{
		{ID: "b1", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
	}

	_, err := s.Create(context.Background(), models.BookingInput{
		Date: "2025-03-07", Time: "10:00", ServiceType: models.ServiceMassage, Procedure: "p1", Phone: "1234",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Len(t, s.All(), 1)
}

func TestCreateBookingRemoteFailure(t *testing.T) {
	gw := &fakeGateway{
		createBooking: func(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
			return nil, errRemote
		},
	}
	bus := &recordingBus{}
	s := newBookingStore(gw, bus)

	_, err := s.Create(context.Background(), models.BookingInput{
		Date: "2025-03-07", Time: "10:00", ServiceType: models.ServiceMassage, Procedure: "p1", Phone: "1234",
	})
	assert.ErrorIs(t, err, errRemote)
	assert.Empty(t, s.All())
	assert.Empty(t, bus.published(), "no event for a booking that never existed")
}

func TestIsTimeAvailable(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	s.bookings = []models.Booking{
		{ID: "b1", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
		{ID: "b2", Date: "2025-03-07", Time: "11:00", Status: models.StatusArchived},
	}

	assert.False(t, s.IsTimeAvailable("2025-03-07", "10:00", ""))
	assert.True(t, s.IsTimeAvailable("2025-03-07", "10:00", "b1"), "a booking can keep its own slot while edited")
	assert.True(t, s.IsTimeAvailable("2025-03-07", "11:00", ""), "archived bookings free their slot")
	assert.True(t, s.IsTimeAvailable("2025-03-07", "12:00", ""))
}

func TestEditBooking(t *testing.T) {
	bus := &recordingBus{}
	s := newBookingStore(&fakeGateway{}, bus)
	s.bookings = []models.Booking{
		{ID: "b1", Date: "2025-03-07", Time: "10:00", Procedure: "old", ServiceType: models.ServiceMassage, Status: models.StatusActive},
	}

	updated, err := s.Edit(context.Background(), "b1", models.BookingPatch{Procedure: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Procedure)
	assert.Equal(t, models.ServiceMassage, updated.ServiceType)

	got, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Procedure)
	assert.Contains(t, bus.published(), events.EventBookingUpdated)
}

func TestEditBookingRollback(t *testing.T) {
	gw := &fakeGateway{
		updateBooking: func(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
			return nil, errRemote
		},
	}
	s := newBookingStore(gw, &recordingBus{})
	s.bookings = []models.Booking{
		{ID: "b1", Procedure: "old", Status: models.StatusActive},
	}

	_, err := s.Edit(context.Background(), "b1", models.BookingPatch{Procedure: "new"})
	assert.ErrorIs(t, err, errRemote)

	got, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, "old", got.Procedure, "failed commit restores the snapshot")
}

func TestEditBookingNotFound(t *testing.T) {
	s := newBookingStore(&fakeGateway{}, &recordingBus{})
	_, err := s.Edit(context.Background(), "ghost", models.BookingPatch{Procedure: "p"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDeleteBooking(t *testing.T) {
	bus := &recordingBus{}
	s := newBookingStore(&fakeGateway{}, bus)
	s.bookings = []models.Booking{{ID: "b1"}, {ID: "b2"}}

	require.NoError(t, s.Delete(context.Background(), "b1"))
	assert.Len(t, s.All(), 1)
	assert.Contains(t, bus.published(), events.EventBookingDeleted)
}

func TestDeleteBookingRollback(t *testing.T) {
	gw := &fakeGateway{
		deleteBooking: func(ctx context.Context, id string) error { return errRemote },
	}
	s := newBookingStore(gw, &recordingBus{})
	s.bookings = []models.Booking{{ID: "b1"}}

	err := s.Delete(context.Background(), "b1")
	assert.ErrorIs(t, err, errRemote)

	_, ok := s.Get("b1")
	assert.True(t, ok, "failed delete restores the booking")
}

func TestArchivePast(t *testing.T) {
	bus := &recordingBus{}
	s := newBookingStore(&fakeGateway{}, bus)
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }
	s.bookings = []models.Booking{
		{ID: "past", Date: "2025-03-07", Time: "10:00", Status: models.StatusActive},
		{ID: "future", Date: "2025-03-07", Time: "15:00", Status: models.StatusActive},
		{ID: "already", Date: "2025-03-06", Time: "10:00", Status: models.StatusArchived},
	}

	assert.Equal(t, 1, s.ArchivePast())

	got, _ := s.Get("past")
	assert.Equal(t, models.StatusArchived, got.Status)
	got, _ = s.Get("future")
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Contains(t, bus.published(), events.EventBookingsArchived)
}

func TestArchivePastNoopPublishesNothing(t *testing.T) {
	bus := &recordingBus{}
	s := newBookingStore(&fakeGateway{}, bus)
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }
	s.bookings = []models.Booking{
		{ID: "future", Date: "2025-03-07", Time: "15:00", Status: models.StatusActive},
	}

	assert.Equal(t, 0, s.ArchivePast())
	assert.Empty(t, bus.published())
}
