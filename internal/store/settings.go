package store

import (
	"context"
	"sync"

	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/models"
	"salonbook/internal/timeutil"

	"github.com/rs/zerolog"
)

// SettingsStore owns the procedure catalogue, the client phone list and
// the work-hours settings. Every mutation is optimistic: apply locally,
// notify, commit to the remote in the same call, restore the snapshot and
// re-notify when the commit fails.
type SettingsStore struct {
	mu         sync.RWMutex
	procedures models.Procedures
	clients    []models.Client
	settings   models.WorkSettings

	gateway domain.Gateway
	bus     domain.EventPublisher
	logger  *zerolog.Logger
}

func NewSettingsStore(gw domain.Gateway, bus domain.EventPublisher, defaults models.WorkSettings, logger *zerolog.Logger) *SettingsStore {
	return &SettingsStore{
		gateway:  gw,
		bus:      bus,
		settings: defaults,
		logger:   logger,
	}
}

// Load replaces all three collections from the gateway.
func (s *SettingsStore) Load(ctx context.Context) {
	procedures := s.gateway.FetchProcedures(ctx)
	clients := s.gateway.FetchClients(ctx)
	settings := s.gateway.FetchSettings(ctx)

	s.mu.Lock()
	s.procedures = procedures
	s.clients = clients
	s.settings = settings
	s.mu.Unlock()
}

func (s *SettingsStore) WorkSettings() models.WorkSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *SettingsStore) Clients() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Client(nil), s.clients...)
}

func (s *SettingsStore) Procedures() models.Procedures {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.procedures.Clone()
}

// ProceduresByType returns one category, or both for "all".
func (s *SettingsStore) ProceduresByType(serviceType string) []models.Procedure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.procedures.ByType(serviceType)
}

// AddProcedure appends a procedure with a locally generated id; the id is
// kept as-is because the remote stores the collection verbatim.
func (s *SettingsStore) AddProcedure(ctx context.Context, serviceType, name string, duration int) (*models.Procedure, error) {
	if serviceType != models.ServiceMassage && serviceType != models.ServiceLaser {
		return nil, ErrUnknownService
	}
	if duration <= 0 {
		duration = models.DefaultSlotDuration
	}

	proc := models.Procedure{ID: models.NewLocalID(), Name: name, Duration: duration}

	s.mu.Lock()
	snapshot := s.procedures.Clone()
	switch serviceType {
	case models.ServiceMassage:
		s.procedures.Massage = append(s.procedures.Massage, proc)
	case models.ServiceLaser:
		s.procedures.Laser = append(s.procedures.Laser, proc)
	}
	updated := s.procedures.Clone()
	s.mu.Unlock()

	s.notify(events.EventProceduresUpdated)

	err := commitOptimistic(ctx, snapshot, s.restoreProcedures,
		func() { s.notify(events.EventProceduresUpdated) },
		func(ctx context.Context) error { return s.gateway.UpdateProcedures(ctx, updated) },
	)
	if err != nil {
		return nil, err
	}
	return &proc, nil
}

// RemoveProcedure deletes a procedure from its category optimistically.
func (s *SettingsStore) RemoveProcedure(ctx context.Context, serviceType, id string) error {
	s.mu.Lock()
	snapshot := s.procedures.Clone()
	switch serviceType {
	case models.ServiceMassage:
		s.procedures.Massage = removeProcedure(s.procedures.Massage, id)
	case models.ServiceLaser:
		s.procedures.Laser = removeProcedure(s.procedures.Laser, id)
	default:
		s.mu.Unlock()
		return ErrUnknownService
	}
	updated := s.procedures.Clone()
	s.mu.Unlock()

	s.notify(events.EventProceduresUpdated)

	return commitOptimistic(ctx, snapshot, s.restoreProcedures,
		func() { s.notify(events.EventProceduresUpdated) },
		func(ctx context.Context) error { return s.gateway.UpdateProcedures(ctx, updated) },
	)
}

// AddClientsFromInput parses a free-form phone list, inserts temporary
// records immediately and reconciles them with the server-confirmed ones.
func (s *SettingsStore) AddClientsFromInput(ctx context.Context, input string) ([]models.Client, error) {
	phones := timeutil.ParsePhoneNumbers(input)
	if len(phones) == 0 {
		return nil, ErrNoValidPhones
	}

	temp := make([]models.Client, len(phones))
	tempIDs := make(map[string]bool, len(phones))
	for i, phone := range phones {
		temp[i] = models.Client{ID: models.NewLocalID(), Phone: phone}
		tempIDs[temp[i].ID] = true
	}

	s.mu.Lock()
	snapshot := append([]models.Client(nil), s.clients...)
	s.clients = append(s.clients, temp...)
	s.mu.Unlock()

	s.notify(events.EventClientsUpdated)

	confirmed, err := s.gateway.AddClients(ctx, phones)
	if err != nil {
		s.restoreClients(snapshot)
		s.notify(events.EventClientsUpdated)
		return nil, err
	}

	// Swap the temporary records for the confirmed ones.
	s.mu.Lock()
	kept := s.clients[:0]
	for _, c := range s.clients {
		if !tempIDs[c.ID] {
			kept = append(kept, c)
		}
	}
	s.clients = append(kept, confirmed...)
	s.mu.Unlock()

	s.notify(events.EventClientsUpdated)
	return confirmed, nil
}

// DeleteClient removes a client optimistically.
func (s *SettingsStore) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.clients {
		if s.clients[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrClientNotFound
	}
	snapshot := append([]models.Client(nil), s.clients...)
	s.clients = append(s.clients[:idx], s.clients[idx+1:]...)
	s.mu.Unlock()

	s.notify(events.EventClientsUpdated)

	// A record still carrying a local id was never confirmed by the
	// remote; there is nothing to commit.
	if models.IsLocalID(id) {
		return nil
	}

	return commitOptimistic(ctx, snapshot, s.restoreClients,
		func() { s.notify(events.EventClientsUpdated) },
		func(ctx context.Context) error { return s.gateway.DeleteClient(ctx, id) },
	)
}

// FindClientByPhone matches on the last four digits, the deliberate weak
// match for the 4-digit numbers collected at booking time.
func (s *SettingsStore) FindClientByPhone(phone string) (*models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.clients {
		if timeutil.PhoneSuffixMatch(s.clients[i].Phone, phone) {
			c := s.clients[i]
			return &c, true
		}
	}
	return nil, false
}

// CallTarget resolves a booking's short phone to a dialable tel: target
// when a client record holds the full number.
func (s *SettingsStore) CallTarget(phone string) (string, bool) {
	client, ok := s.FindClientByPhone(phone)
	if !ok || len(client.Phone) <= 4 {
		return "", false
	}
	return "tel:" + client.Phone, true
}

// SaveWorktime updates the work hours optimistically.
func (s *SettingsStore) SaveWorktime(ctx context.Context, start, end string) error {
	if !timeutil.RangeValid(start, end) {
		return ErrInvalidTimeRange
	}

	s.mu.Lock()
	snapshot := s.settings.Clone()
	s.settings.WorkStart = start
	s.settings.WorkEnd = end
	updated := s.settings.Clone()
	s.mu.Unlock()

	s.notify(events.EventSettingsUpdated)

	return commitOptimistic(ctx, snapshot, s.restoreSettings,
		func() { s.notify(events.EventSettingsUpdated) },
		func(ctx context.Context) error { return s.gateway.UpdateSettings(ctx, updated) },
	)
}

// AddBreak appends a break interval optimistically. Breaks are not sorted
// or checked for overlap; only start < end is enforced.
func (s *SettingsStore) AddBreak(ctx context.Context, start, end string) error {
	if !timeutil.RangeValid(start, end) {
		return ErrInvalidTimeRange
	}

	s.mu.Lock()
	snapshot := s.settings.Clone()
	s.settings.Breaks = append(s.settings.Breaks, models.Break{Start: start, End: end})
	updated := s.settings.Clone()
	s.mu.Unlock()

	s.notify(events.EventSettingsUpdated)

	return commitOptimistic(ctx, snapshot, s.restoreSettings,
		func() { s.notify(events.EventSettingsUpdated) },
		func(ctx context.Context) error { return s.gateway.UpdateSettings(ctx, updated) },
	)
}

// RemoveBreak deletes the break at the given position optimistically.
func (s *SettingsStore) RemoveBreak(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.settings.Breaks) {
		s.mu.Unlock()
		return ErrBreakNotFound
	}
	snapshot := s.settings.Clone()
	s.settings.Breaks = append(s.settings.Breaks[:index], s.settings.Breaks[index+1:]...)
	updated := s.settings.Clone()
	s.mu.Unlock()

	s.notify(events.EventSettingsUpdated)

	return commitOptimistic(ctx, snapshot, s.restoreSettings,
		func() { s.notify(events.EventSettingsUpdated) },
		func(ctx context.Context) error { return s.gateway.UpdateSettings(ctx, updated) },
	)
}

func (s *SettingsStore) restoreProcedures(snapshot models.Procedures) {
	s.mu.Lock()
	s.procedures = snapshot
	s.mu.Unlock()
}

func (s *SettingsStore) restoreClients(snapshot []models.Client) {
	s.mu.Lock()
	s.clients = snapshot
	s.mu.Unlock()
}

func (s *SettingsStore) restoreSettings(snapshot models.WorkSettings) {
	s.mu.Lock()
	s.settings = snapshot
	s.mu.Unlock()
}

func (s *SettingsStore) notify(eventType string) {
	if err := s.bus.PublishJSON(eventType, struct{}{}); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func removeProcedure(procedures []models.Procedure, id string) []models.Procedure {
	kept := procedures[:0]
	for _, p := range procedures {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return kept
}
