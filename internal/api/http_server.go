package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"salonbook/internal/config"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/schedule"
	"salonbook/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Diagnostics exposes gateway health for the status endpoint.
type Diagnostics interface {
	LastRefreshFailed() bool
}

// HTTPServer is the function surface the single-page console calls: day
// slots with classification, booking CRUD, procedures, clients and work
// settings. Rendering stays on the client; this layer only maps HTTP onto
// the stores.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings *store.BookingStore
	settings *store.SettingsStore
	diag     Diagnostics
	duration int
	server   *http.Server
	logger   *zerolog.Logger
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPServer(cfg config.APIConfig, bookings *store.BookingStore, settings *store.SettingsStore, diag Diagnostics, slotDuration int, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		settings: settings,
		diag:     diag,
		duration: slotDuration,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/bookings/today", srv.handleTodayBookings)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/procedures", srv.handleProcedures)
	mux.HandleFunc("/api/v1/procedures/", srv.handleProcedureByID)
	mux.HandleFunc("/api/v1/clients", srv.handleClients)
	mux.HandleFunc("/api/v1/clients/call", srv.handleClientCall)
	mux.HandleFunc("/api/v1/clients/", srv.handleClientByID)
	mux.HandleFunc("/api/v1/settings", srv.handleSettings)
	mux.HandleFunc("/api/v1/settings/worktime", srv.handleWorktime)
	mux.HandleFunc("/api/v1/settings/breaks", srv.handleBreaks)
	mux.HandleFunc("/api/v1/settings/breaks/", srv.handleBreakByIndex)
	mux.HandleFunc("/api/v1/status", srv.handleStatus)

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("console API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateKey, ok := requireDate(w, r)
	if !ok {
		return
	}

	settings := s.settings.WorkSettings()
	slots := schedule.Generate(settings.WorkStart, settings.WorkEnd, s.duration, settings.Breaks)
	tagged := schedule.Classify(slots, s.bookings.BookingsOn(dateKey), settings.Breaks)

	writeJSON(w, http.StatusOK, map[string]any{"date": dateKey, "slots": tagged})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateKey, ok := requireDate(w, r)
	if !ok {
		return
	}
	clock := strings.TrimSpace(r.URL.Query().Get("time"))
	if clock == "" {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}
	exclude := strings.TrimSpace(r.URL.Query().Get("exclude"))

	available := s.bookings.IsTimeAvailable(dateKey, clock, exclude)
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

func (s *HTTPServer) handleTodayBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_today")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": s.bookings.TodayBookings()})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	switch r.Method {
	case http.MethodGet:
		dateKey := strings.TrimSpace(r.URL.Query().Get("date"))
		if dateKey == "" {
			writeJSON(w, http.StatusOK, map[string]any{"bookings": s.bookings.All()})
			return
		}
		if _, err := time.Parse("2006-01-02", dateKey); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": s.bookings.BookingsOn(dateKey)})

	case http.MethodPost:
		var input models.BookingInput
		if !decodeBody(w, r, &input) {
			return
		}
		if _, err := time.Parse("2006-01-02", input.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		booking, err := s.bookings.Create(r.Context(), input)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking")
	id := pathTail(r.URL.Path, "/api/v1/bookings/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var patch models.BookingPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		booking, err := s.bookings.Edit(r.Context(), id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case http.MethodDelete:
		if err := s.bookings.Delete(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleProcedures(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("procedures")
	switch r.Method {
	case http.MethodGet:
		serviceType := strings.TrimSpace(r.URL.Query().Get("type"))
		if serviceType == "" {
			serviceType = models.ServiceAll
		}
		procedures := s.settings.ProceduresByType(serviceType)
		if procedures == nil {
			procedures = []models.Procedure{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"procedures": procedures})

	case http.MethodPost:
		var body struct {
			Type     string `json:"type"`
			Name     string `json:"name"`
			Duration int    `json:"duration"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		proc, err := s.settings.AddProcedure(r.Context(), body.Type, body.Name, body.Duration)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, proc)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleProcedureByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("procedure")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathTail(r.URL.Path, "/api/v1/procedures/")
	serviceType := strings.TrimSpace(r.URL.Query().Get("type"))
	if id == "" || serviceType == "" {
		writeError(w, http.StatusBadRequest, "procedure id and type are required")
		return
	}

	if err := s.settings.RemoveProcedure(r.Context(), serviceType, id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clients")
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"clients": s.settings.Clients()})

	case http.MethodPost:
		var body struct {
			Input string `json:"input"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		added, err := s.settings.AddClientsFromInput(r.Context(), body.Input)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"clients": added})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleClientCall(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("client_call")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	target, ok := s.settings.CallTarget(phone)
	if !ok {
		writeError(w, http.StatusNotFound, "no full number on record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"target": target})
}

func (s *HTTPServer) handleClientByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("client")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathTail(r.URL.Path, "/api/v1/clients/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "client id is required")
		return
	}

	if err := s.settings.DeleteClient(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("settings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.settings.WorkSettings())
}

func (s *HTTPServer) handleWorktime(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("worktime")
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.settings.SaveWorktime(r.Context(), body.Start, body.End); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.settings.WorkSettings())
}

func (s *HTTPServer) handleBreaks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("breaks")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.settings.AddBreak(r.Context(), body.Start, body.End); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.settings.WorkSettings())
}

func (s *HTTPServer) handleBreakByIndex(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("break")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := pathTail(r.URL.Path, "/api/v1/settings/breaks/")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "break index must be a number")
		return
	}

	if err := s.settings.RemoveBreak(r.Context(), index); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.settings.WorkSettings())
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("status")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_refresh_failed": s.diag.LastRefreshFailed(),
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("dur", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		lim := s.getLimiter(clientKey(r))
		if !lim.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) getLimiter(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := s.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), burst)
	actual, loaded := s.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func pathTail(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

func requireDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	dateKey := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateKey == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return "", false
	}
	if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return "", false
	}
	return dateKey, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrSlotTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidPhone),
		errors.Is(err, store.ErrNoValidPhones),
		errors.Is(err, store.ErrInvalidTimeRange),
		errors.Is(err, store.ErrMissingProcedure),
		errors.Is(err, store.ErrUnknownService):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrClientNotFound),
		errors.Is(err, store.ErrBreakNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
