package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"salonbook/internal/cache"
	"salonbook/internal/models"

	"github.com/rs/zerolog"
)

const (
	actionGetBookings      = "getBookings"
	actionCreateBooking    = "createBooking"
	actionUpdateBooking    = "updateBooking"
	actionDeleteBooking    = "deleteBooking"
	actionGetProcedures    = "getProcedures"
	actionUpdateProcedures = "updateProcedures"
	actionGetClients       = "getClients"
	actionAddClients       = "addClients"
	actionDeleteClient     = "deleteClient"
	actionGetSettings      = "getSettings"
	actionUpdateSettings   = "updateSettings"
)

// Gateway wraps the remote store behind per-entity operations, reading
// through the local cache. Reads are total: a present cache value is served
// immediately (with a background revalidation when stale) and a failed
// synchronous fetch degrades to the entity default. Writes go to the remote
// first, patch the cache on success and propagate errors so the store layer
// can roll back.
type Gateway struct {
	client          *Client
	cache           *cache.Cache
	refresher       *Refresher
	defaultSettings models.WorkSettings
	logger          *zerolog.Logger
}

func New(client *Client, c *cache.Cache, refresher *Refresher, defaultSettings models.WorkSettings, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		client:          client,
		cache:           c,
		refresher:       refresher,
		defaultSettings: defaultSettings,
		logger:          logger,
	}
}

// fetch implements the read path shared by every entity: cache hit wins,
// stale hit also schedules a revalidation, miss falls through to a
// synchronous fetch, and any failure yields the fallback.
func fetch[T any](g *Gateway, ctx context.Context, key, action string, fallback T) T {
	var cached T
	if g.cache.Get(ctx, key, &cached) {
		if !g.cache.Fresh(ctx, key) {
			g.refresher.Enqueue(key, action)
		}
		return cached
	}

	raw, err := g.client.Read(ctx, action, nil)
	if err != nil {
		g.logger.Warn().Err(err).Str("action", action).Msg("remote read failed, serving default")
		return fallback
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		g.logger.Warn().Err(err).Str("action", action).Msg("remote payload malformed, serving default")
		return fallback
	}

	g.cache.Put(ctx, key, out)
	return out
}

func (g *Gateway) FetchBookings(ctx context.Context) []models.Booking {
	return fetch(g, ctx, models.CacheKeyBookings, actionGetBookings, []models.Booking{})
}

func (g *Gateway) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	raw, err := g.client.Write(ctx, actionCreateBooking, map[string]interface{}{
		"date":        input.Date,
		"time":        input.Time,
		"serviceType": input.ServiceType,
		"procedure":   input.Procedure,
		"phone":       input.Phone,
	})
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	if err := json.Unmarshal(raw, &booking); err != nil {
		return nil, fmt.Errorf("decode created booking: %w", err)
	}

	var cached []models.Booking
	g.cache.Get(ctx, models.CacheKeyBookings, &cached)
	g.cache.Put(ctx, models.CacheKeyBookings, append(cached, booking))

	return &booking, nil
}

func (g *Gateway) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	raw, err := g.client.Write(ctx, actionUpdateBooking, map[string]interface{}{
		"id":      id,
		"updates": patch,
	})
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	if err := json.Unmarshal(raw, &booking); err != nil {
		return nil, fmt.Errorf("decode updated booking: %w", err)
	}

	var cached []models.Booking
	if g.cache.Get(ctx, models.CacheKeyBookings, &cached) {
		for i := range cached {
			if cached[i].ID == id {
				applyPatch(&cached[i], patch)
				break
			}
		}
		g.cache.Put(ctx, models.CacheKeyBookings, cached)
	}

	return &booking, nil
}

func (g *Gateway) DeleteBooking(ctx context.Context, id string) error {
	if _, err := g.client.Write(ctx, actionDeleteBooking, map[string]interface{}{"id": id}); err != nil {
		return err
	}

	var cached []models.Booking
	if g.cache.Get(ctx, models.CacheKeyBookings, &cached) {
		kept := cached[:0]
		for _, b := range cached {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		g.cache.Put(ctx, models.CacheKeyBookings, kept)
	}

	return nil
}

func (g *Gateway) FetchProcedures(ctx context.Context) models.Procedures {
	return fetch(g, ctx, models.CacheKeyProcedures, actionGetProcedures, models.Procedures{})
}

func (g *Gateway) UpdateProcedures(ctx context.Context, procedures models.Procedures) error {
	if _, err := g.client.Write(ctx, actionUpdateProcedures, map[string]interface{}{"procedures": procedures}); err != nil {
		return err
	}
	g.cache.Put(ctx, models.CacheKeyProcedures, procedures)
	return nil
}

func (g *Gateway) FetchClients(ctx context.Context) []models.Client {
	return fetch(g, ctx, models.CacheKeyClients, actionGetClients, []models.Client{})
}

func (g *Gateway) AddClients(ctx context.Context, phones []string) ([]models.Client, error) {
	raw, err := g.client.Write(ctx, actionAddClients, map[string]interface{}{"phones": phones})
	if err != nil {
		return nil, err
	}

	var added []models.Client
	if err := json.Unmarshal(raw, &added); err != nil {
		return nil, fmt.Errorf("decode added clients: %w", err)
	}

	if len(added) > 0 {
		var cached []models.Client
		g.cache.Get(ctx, models.CacheKeyClients, &cached)
		g.cache.Put(ctx, models.CacheKeyClients, append(cached, added...))
	}

	return added, nil
}

func (g *Gateway) DeleteClient(ctx context.Context, id string) error {
	if _, err := g.client.Write(ctx, actionDeleteClient, map[string]interface{}{"id": id}); err != nil {
		return err
	}

	var cached []models.Client
	if g.cache.Get(ctx, models.CacheKeyClients, &cached) {
		kept := cached[:0]
		for _, c := range cached {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		g.cache.Put(ctx, models.CacheKeyClients, kept)
	}

	return nil
}

func (g *Gateway) FetchSettings(ctx context.Context) models.WorkSettings {
	return fetch(g, ctx, models.CacheKeySettings, actionGetSettings, g.defaultSettings.Clone())
}

func (g *Gateway) UpdateSettings(ctx context.Context, settings models.WorkSettings) error {
	if _, err := g.client.Write(ctx, actionUpdateSettings, map[string]interface{}{"settings": settings}); err != nil {
		return err
	}
	g.cache.Put(ctx, models.CacheKeySettings, settings)
	return nil
}

// LastRefreshFailed exposes the refresher's failure flag for diagnostics.
func (g *Gateway) LastRefreshFailed() bool {
	return g.refresher.LastRefreshFailed()
}

func applyPatch(b *models.Booking, patch models.BookingPatch) {
	if patch.Procedure != "" {
		b.Procedure = patch.Procedure
	}
	if patch.ServiceType != "" {
		b.ServiceType = patch.ServiceType
	}
}
