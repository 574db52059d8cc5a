// Package api exposes the booking subsystem over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/metrics"
	"slotbook/internal/service"
	"slotbook/internal/token"
	"slotbook/internal/worker"
)

// HTTPServer wires the services to their routes.
type HTTPServer struct {
	cfg          config.APIConfig
	reservations *service.ReservationService
	users        *service.UserService
	identity     *service.IdentityResolver
	cache        domain.CacheRepository
	exports      *worker.ExportWorker
	logger       *zerolog.Logger
	server       *http.Server
}

func NewHTTPServer(
	cfg config.APIConfig,
	reservations *service.ReservationService,
	users *service.UserService,
	identity *service.IdentityResolver,
	cache domain.CacheRepository,
	exports *worker.ExportWorker,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		users:        users,
		identity:     identity,
		cache:        cache,
		exports:      exports,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signup", srv.handleSignup)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/auth/refresh", srv.handleRefresh)
	mux.HandleFunc("/api/v1/auth/deactivate", srv.handleDeactivate)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/guest", srv.handleGuestLookup)
	mux.HandleFunc("/api/v1/reservations/update", srv.handleUpdate)
	mux.HandleFunc("/api/v1/reservations/search", srv.handleSearch)
	mux.HandleFunc("/api/v1/reservations/cancel", srv.handleCancel)
	mux.HandleFunc("/api/v1/slots/open", srv.handleOpenSlots)
	mux.HandleFunc("/api/v1/exports", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(newRateLimiter(&cfg).wrap(srv.identityMiddleware(mux)))

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
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

const requestIDHeader = "X-Request-Id"

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps the typed service and store errors to HTTP
// statuses. Unmatched errors become 500 without leaking details.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, database.ErrSlotInPast):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, token.ErrExpired):
		metrics.IncTokenFailure("expired")
		writeError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, token.ErrMalformed):
		metrics.IncTokenFailure("malformed")
		writeError(w, http.StatusUnauthorized, "token malformed")
	case errors.Is(err, token.ErrUnknown):
		metrics.IncTokenFailure("unknown")
		writeError(w, http.StatusUnauthorized, "token validation failed")
	case errors.Is(err, service.ErrMemberRequired),
		errors.Is(err, database.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, database.ErrUserDisabled),
		errors.Is(err, database.ErrSlotForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrSlotNotFound),
		errors.Is(err, database.ErrReservationNotFound),
		errors.Is(err, database.ErrBranchNotFound),
		errors.Is(err, database.ErrThemeNotFound),
		errors.Is(err, database.ErrPaymentNotFound),
		errors.Is(err, database.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrSlotAlreadyReserved),
		errors.Is(err, database.ErrDuplicateUserInfo):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, worker.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
