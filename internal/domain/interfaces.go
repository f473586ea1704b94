package domain

import (
	"context"

	"salonbook/internal/models"
)

// CacheStorage is the durable key-value surface beneath the local cache.
// Get reports presence separately from errors so an absent key is not a
// failure.
type CacheStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Gateway is the remote spreadsheet-backed store behind a uniform
// request/response contract. Fetches never fail: they fall back to the
// cache and then to entity defaults. Writes return the error so the store
// layer can roll back its optimistic mutation.
type Gateway interface {
	FetchBookings(ctx context.Context) []models.Booking
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error

	FetchProcedures(ctx context.Context) models.Procedures
	UpdateProcedures(ctx context.Context, procedures models.Procedures) error

	FetchClients(ctx context.Context) []models.Client
	AddClients(ctx context.Context, phones []string) ([]models.Client, error)
	DeleteClient(ctx context.Context, id string) error

	FetchSettings(ctx context.Context) models.WorkSettings
	UpdateSettings(ctx context.Context, settings models.WorkSettings) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
