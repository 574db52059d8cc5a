package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/service"
	"slotbook/internal/worker"
)

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Throttle by caller address before touching credentials.
	allowed, err := s.cache.CheckRateLimit(r.Context(), "login:"+clientKey(r),
		models.LoginRateLimit, models.LoginRateWindow*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login throttle check failed")
	} else if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := s.users.Login(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, ok := s.requireMember(w, r)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.Deactivate(r.Context(), actor, req.Password); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReservations serves both channels of /api/v1/reservations:
// POST creates a booking for the current actor, GET pages the member's
// own history.
func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createReservation(w, r)
	case http.MethodGet:
		s.listReservations(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var req service.CreateReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := actorFromContext(r.Context())
	view, err := s.reservations.Create(r.Context(), actor, req)
	if err != nil {
		metrics.IncReservation("rejected")
		s.writeServiceError(w, err)
		return
	}

	metrics.IncReservation("created")
	s.invalidateSlotCache(r, view.BranchID)
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireMember(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := s.reservations.ListForMember(r.Context(), actor, page, pageSize)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleGuestLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req service.GuestLookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := s.reservations.LookupAsGuest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req service.UpdateReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := actorFromContext(r.Context())
	affected, err := s.reservations.Update(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"rows_affected": affected})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, ok := s.requireMember(w, r)
	if !ok {
		return
	}

	var req service.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	views, err := s.reservations.Search(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": views})
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, ok := s.requireMember(w, r)
	if !ok {
		return
	}

	var req struct {
		ReservationID int64 `json:"reservation_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.reservations.Cancel(r.Context(), actor, req.ReservationID); err != nil {
		metrics.IncReservation("cancel_rejected")
		s.writeServiceError(w, err)
		return
	}

	metrics.IncReservation("canceled")
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleOpenSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	branchID, _ := strconv.ParseInt(r.URL.Query().Get("branch_id"), 10, 64)

	cacheKey := fmt.Sprintf("%d:%s", branchID, dateStr)
	if cached, err := s.cache.GetSlots(r.Context(), cacheKey); err == nil && cached != nil {
		writeJSON(w, http.StatusOK, map[string]any{"slots": cached})
		return
	}

	slots, err := s.reservations.OpenSlots(r.Context(), branchID, date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.cache.SetSlots(r.Context(), cacheKey, slots, models.SlotCacheTTL*time.Second); err != nil {
		s.logger.Warn().Err(err).Msg("slot cache write failed")
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// invalidateSlotCache drops the cached listings a new booking made
// stale: the branch view and the all-branches view.
func (s *HTTPServer) invalidateSlotCache(r *http.Request, branchID int64) {
	today := time.Now().Format("2006-01-02")
	for _, key := range []string{
		fmt.Sprintf("%d:%s", branchID, today),
		fmt.Sprintf("0:%s", today),
	} {
		if err := s.cache.InvalidateSlots(r.Context(), key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("slot cache invalidation failed")
		}
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, ok := s.requireMember(w, r)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		s.writeServiceError(w, service.ErrNotAuthorized)
		return
	}

	var req struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end date before start date")
		return
	}

	job := worker.ExportJob{Start: start, End: end, RequestedBy: actor.Member.ID}
	if err := s.exports.Enqueue(job); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
