package store

import (
	"context"
	"errors"
	"io"
	"sync"

	"salonbook/internal/models"

	"github.com/rs/zerolog"
)

// fakeGateway implements domain.Gateway with per-method hooks; unset hooks
// return benign defaults.
type fakeGateway struct {
	fetchBookings    func(ctx context.Context) []models.Booking
	createBooking    func(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	updateBooking    func(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	deleteBooking    func(ctx context.Context, id string) error
	fetchProcedures  func(ctx context.Context) models.Procedures
	updateProcedures func(ctx context.Context, procedures models.Procedures) error
	fetchClients     func(ctx context.Context) []models.Client
	addClients       func(ctx context.Context, phones []string) ([]models.Client, error)
	deleteClient     func(ctx context.Context, id string) error
	fetchSettings    func(ctx context.Context) models.WorkSettings
	updateSettings   func(ctx context.Context, settings models.WorkSettings) error
}

func (f *fakeGateway) FetchBookings(ctx context.Context) []models.Booking {
	if f.fetchBookings != nil {
		return f.fetchBookings(ctx)
	}
	return nil
}

func (f *fakeGateway) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	if f.createBooking != nil {
		return f.createBooking(ctx, input)
	}
	b := models.Booking{
		ID: "srv-1", Date: input.Date, Time: input.Time,
		ServiceType: input.ServiceType, Procedure: input.Procedure,
		Phone: input.Phone, Status: models.StatusActive,
	}
	return &b, nil
}

func (f *fakeGateway) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	if f.updateBooking != nil {
		return f.updateBooking(ctx, id, patch)
	}
	return &models.Booking{ID: id}, nil
}

func (f *fakeGateway) DeleteBooking(ctx context.Context, id string) error {
	if f.deleteBooking != nil {
		return f.deleteBooking(ctx, id)
	}
	return nil
}

func (f *fakeGateway) FetchProcedures(ctx context.Context) models.Procedures {
	if f.fetchProcedures != nil {
		return f.fetchProcedures(ctx)
	}
	return models.Procedures{}
}

func (f *fakeGateway) UpdateProcedures(ctx context.Context, procedures models.Procedures) error {
	if f.updateProcedures != nil {
		return f.updateProcedures(ctx, procedures)
	}
	return nil
}

func (f *fakeGateway) FetchClients(ctx context.Context) []models.Client {
	if f.fetchClients != nil {
		return f.fetchClients(ctx)
	}
	return nil
}

func (f *fakeGateway) AddClients(ctx context.Context, phones []string) ([]models.Client, error) {
	if f.addClients != nil {
		return f.addClients(ctx, phones)
	}
	clients := make([]models.Client, len(phones))
	for i, p := range phones {
		clients[i] = models.Client{ID: "srv-" + p, Phone: p}
	}
	return clients, nil
}

func (f *fakeGateway) DeleteClient(ctx context.Context, id string) error {
	if f.deleteClient != nil {
		return f.deleteClient(ctx, id)
	}
	return nil
}

func (f *fakeGateway) FetchSettings(ctx context.Context) models.WorkSettings {
	if f.fetchSettings != nil {
		return f.fetchSettings(ctx)
	}
	return models.WorkSettings{WorkStart: "09:00", WorkEnd: "21:00"}
}

func (f *fakeGateway) UpdateSettings(ctx context.Context, settings models.WorkSettings) error {
	if f.updateSettings != nil {
		return f.updateSettings(ctx, settings)
	}
	return nil
}

// recordingBus counts published events by type.
type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) PublishJSON(eventType string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	return nil
}

func (b *recordingBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

var errRemote = errors.New("remote write failed")

func discardLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
