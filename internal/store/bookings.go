package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/models"
	"salonbook/internal/schedule"
	"salonbook/internal/timeutil"

	"github.com/rs/zerolog"
)

// BookingStore is the in-memory authoritative booking collection. Creation
// awaits the server-assigned id before inserting; edit and delete apply
// optimistically and roll back when the remote write fails. Change
// notifications go through the event bus, never into view state directly.
type BookingStore struct {
	mu       sync.RWMutex
	bookings []models.Booking

	gateway domain.Gateway
	bus     domain.EventPublisher
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewBookingStore(gw domain.Gateway, bus domain.EventPublisher, logger *zerolog.Logger) *BookingStore {
	return &BookingStore{
		gateway: gw,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

// Load replaces the collection from the gateway (cache-first, never fails).
func (s *BookingStore) Load(ctx context.Context) {
	bookings := s.gateway.FetchBookings(ctx)

	s.mu.Lock()
	s.bookings = bookings
	s.mu.Unlock()
}

// All returns a copy of every booking regardless of status.
func (s *BookingStore) All() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking(nil), s.bookings...)
}

// BookingsOn returns the day's bookings sorted by start time.
func (s *BookingStore) BookingsOn(dateKey string) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var day []models.Booking
	for _, b := range s.bookings {
		if b.Date == dateKey {
			day = append(day, b)
		}
	}
	sort.Slice(day, func(i, j int) bool {
		return timeutil.ToMinutes(day[i].Time) < timeutil.ToMinutes(day[j].Time)
	})
	return day
}

// TodayBookings returns today's active bookings that have not yet started,
// sorted by start time.
func (s *BookingStore) TodayBookings() []models.Booking {
	now := s.now()
	todayKey := timeutil.DateKey(now)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var today []models.Booking
	for _, b := range s.bookings {
		if b.Date == todayKey && b.Status == models.StatusActive && !timeutil.IsPast(b.Date, b.Time, now) {
			today = append(today, b)
		}
	}
	sort.Slice(today, func(i, j int) bool {
		return timeutil.ToMinutes(today[i].Time) < timeutil.ToMinutes(today[j].Time)
	})
	return today
}

// Get returns the booking with the given id.
func (s *BookingStore) Get(id string) (*models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, true
		}
	}
	return nil, false
}

// IsTimeAvailable reports whether no active booking other than excludeID
// occupies the exact date and time. This is the sole collision guard;
// archived bookings never block a slot.
func (s *BookingStore) IsTimeAvailable(dateKey, clock, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !schedule.ConflictsAt(s.bookings, dateKey, clock, excludeID)
}

// Create validates the input, checks the slot and inserts only after the
// remote store confirms and assigns the canonical id.
func (s *BookingStore) Create(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	if !timeutil.ValidatePhone(input.Phone) {
		return nil, ErrInvalidPhone
	}
	if input.Procedure == "" {
		return nil, ErrMissingProcedure
	}
	if input.ServiceType != models.ServiceMassage && input.ServiceType != models.ServiceLaser {
		return nil, ErrUnknownService
	}
	if !s.IsTimeAvailable(input.Date, input.Time, "") {
		return nil, ErrSlotTaken
	}

	booking, err := s.gateway.CreateBooking(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.bookings = append(s.bookings, *booking)
	s.mu.Unlock()

	s.notify(events.EventBookingCreated, booking)
	return booking, nil
}

// Edit applies the patch optimistically and rolls it back when the remote
// write fails. Only procedure and serviceType are editable; date, time and
// status stay untouched so an edit can never race the archival sweep's
// status flip.
func (s *BookingStore) Edit(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	s.mu.Lock()
	idx := indexByID(s.bookings, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrBookingNotFound
	}

	snapshot := s.bookings[idx]
	if patch.Procedure != "" {
		s.bookings[idx].Procedure = patch.Procedure
	}
	if patch.ServiceType != "" {
		s.bookings[idx].ServiceType = patch.ServiceType
	}
	updated := s.bookings[idx]
	s.mu.Unlock()

	s.notify(events.EventBookingUpdated, &updated)

	err := commitOptimistic(ctx, snapshot,
		func(prev models.Booking) {
			s.mu.Lock()
			if i := indexByID(s.bookings, id); i >= 0 {
				s.bookings[i] = prev
			}
			s.mu.Unlock()
		},
		func() { s.notify(events.EventBookingUpdated, &snapshot) },
		func(ctx context.Context) error {
			_, err := s.gateway.UpdateBooking(ctx, id, patch)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the booking optimistically and restores it when the
// remote write fails.
func (s *BookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := indexByID(s.bookings, id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrBookingNotFound
	}

	snapshot := s.bookings[idx]
	s.bookings = append(s.bookings[:idx], s.bookings[idx+1:]...)
	s.mu.Unlock()

	s.notify(events.EventBookingDeleted, &snapshot)

	return commitOptimistic(ctx, snapshot,
		func(prev models.Booking) {
			s.mu.Lock()
			s.bookings = append(s.bookings, prev)
			s.mu.Unlock()
		},
		func() { s.notify(events.EventBookingUpdated, &snapshot) },
		func(ctx context.Context) error {
			return s.gateway.DeleteBooking(ctx, id)
		},
	)
}

// ArchivePast flips every active booking whose date+time has elapsed to
// archived and returns how many were flipped.
func (s *BookingStore) ArchivePast() int {
	now := s.now()

	s.mu.Lock()
	count := 0
	for i := range s.bookings {
		if s.bookings[i].Status == models.StatusActive && timeutil.IsPast(s.bookings[i].Date, s.bookings[i].Time, now) {
			s.bookings[i].Status = models.StatusArchived
			count++
		}
	}
	s.mu.Unlock()

	if count > 0 {
		if err := s.bus.PublishJSON(events.EventBookingsArchived, events.ArchivePayload{Count: count}); err != nil {
			s.logger.Error().Err(err).Msg("publish archive event")
		}
	}
	return count
}

func (s *BookingStore) notify(eventType string, b *models.Booking) {
	payload := events.BookingEventPayload{
		BookingID:   b.ID,
		Date:        b.Date,
		Time:        b.Time,
		ServiceType: b.ServiceType,
		Procedure:   b.Procedure,
		Status:      b.Status,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.ID).Msg("publish event error")
	}
}

func indexByID(bookings []models.Booking, id string) int {
	for i := range bookings {
		if bookings[i].ID == id {
			return i
		}
	}
	return -1
}
