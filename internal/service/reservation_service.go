package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
)

var (
	// ErrMemberRequired is returned when an operation that needs an
	// authenticated member is called by a guest.
	ErrMemberRequired = errors.New("member identity required")

	// ErrNotAuthorized is returned when a member acts on a reservation
	// they do not own and they are not an admin.
	ErrNotAuthorized = errors.New("not authorized for reservation")

	// ErrInvalidInput is returned for requests that fail basic field
	// validation before they reach the store.
	ErrInvalidInput = errors.New("invalid input")
)

// CreateReservationRequest carries the booking intent. UserID is taken
// from the actor, never from the request body.
type CreateReservationRequest struct {
	SlotID      int64  `json:"slot_id"`
	BookerName  string `json:"booker_name"`
	PhoneNumber string `json:"phone_number"`
	PaymentID   int64  `json:"payment_id"`
}

// UpdateReservationRequest carries contact-detail changes. For guests,
// CheckPhoneNumber must match the stored phone number or the update
// silently affects zero rows.
type UpdateReservationRequest struct {
	ReservationID    int64  `json:"reservation_id"`
	BookerName       string `json:"booker_name"`
	PhoneNumber      string `json:"phone_number"`
	CheckPhoneNumber string `json:"check_phone_number,omitempty"`
}

// GuestLookupRequest identifies a reservation on the anonymous channel.
// All three fields must match exactly.
type GuestLookupRequest struct {
	ReservationNumber string `json:"reservation_number"`
	BookerName        string `json:"booker_name"`
	PhoneNumber       string `json:"phone_number"`
}

// SearchRequest filters reservations for back-office search. Nil
// fields are not applied.
type SearchRequest struct {
	BookerName    *string `json:"booker_name,omitempty"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	ReservationID *int64  `json:"reservation_id,omitempty"`
}

// ReservationView is the outward shape of a reservation. The guest
// channel gets a masked view; member and admin reads are unmasked.
type ReservationView struct {
	ID                int64     `json:"id"`
	ReservationNumber string    `json:"reservation_number"`
	BookerName        string    `json:"booker_name"`
	PhoneNumber       string    `json:"phone_number"`
	SlotID            int64     `json:"slot_id"`
	BranchID          int64     `json:"branch_id"`
	ThemeID           int64     `json:"theme_id"`
	PaymentID         int64     `json:"payment_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReservationPage is one page of a member's booking history.
type ReservationPage struct {
	Reservations []ReservationView `json:"reservations"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	Total        int64             `json:"total"`
}

func newReservationView(r *models.Reservation) ReservationView {
	return ReservationView{
		ID:                r.ID,
		ReservationNumber: r.ReservationNumber,
		BookerName:        r.BookerName,
		PhoneNumber:       r.PhoneNumber,
		SlotID:            r.SlotID,
		BranchID:          r.BranchID,
		ThemeID:           r.ThemeID,
		PaymentID:         r.PaymentID,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
	}
}

func newMaskedReservationView(r *models.Reservation) ReservationView {
	v := newReservationView(r)
	v.BookerName = MaskBookerName(v.BookerName)
	v.PhoneNumber = MaskPhoneNumber(v.PhoneNumber)
	return v
}

// ReservationService implements the booking engine: atomic slot
// claims, guest lookups, member history, updates and cancellation.
type ReservationService struct {
	store  domain.Store
	clock  domain.Clock
	rand   domain.Rand
	events domain.EventPublisher
	logger *zerolog.Logger
}

func NewReservationService(store domain.Store, clock domain.Clock, rand domain.Rand, publisher domain.EventPublisher, logger *zerolog.Logger) *ReservationService {
	if clock == nil {
		clock = systemClock{}
	}
	if rand == nil {
		rand = SystemRand{}
	}
	return &ReservationService{
		store:  store,
		clock:  clock,
		rand:   rand,
		events: publisher,
		logger: logger,
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Create books the slot for the actor. The slot claim and the
// reservation insert commit in one transaction inside the store; a
// losing racer gets ErrSlotAlreadyReserved. The reservation number is
// regenerated once if it collides with an existing one.
func (s *ReservationService) Create(ctx context.Context, actor models.Actor, req CreateReservationRequest) (*ReservationView, error) {
	if req.BookerName == "" || req.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: booker name and phone number are required", ErrInvalidInput)
	}

	slot, err := s.store.GetSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.StartsAt().After(s.clock.Now()) {
		return nil, database.ErrSlotInPast
	}
	if slot.Reserved {
		// Fast path; the conditional update below is the real guard.
		return nil, database.ErrSlotAlreadyReserved
	}
	if !slot.Opened || !slot.Shown {
		return nil, database.ErrSlotForbidden
	}

	if _, err := s.store.GetBranch(ctx, slot.BranchID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTheme(ctx, slot.ThemeID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPayment(ctx, req.PaymentID); err != nil {
		return nil, err
	}

	res := &models.Reservation{
		ReservationNumber: MakeReservationNumber(slot.Date, slot.ThemeID, slot.BranchID, req.PhoneNumber, s.rand),
		BookerName:        req.BookerName,
		PhoneNumber:       req.PhoneNumber,
		SlotID:            slot.ID,
		BranchID:          slot.BranchID,
		ThemeID:           slot.ThemeID,
		PaymentID:         req.PaymentID,
		Status:            models.StatusActive,
	}
	if actor.IsMember() {
		id := actor.Member.ID
		res.UserID = &id
	}

	err = s.store.CreateReservation(ctx, res)
	if errors.Is(err, database.ErrDuplicateReservationNumber) {
		res.ReservationNumber = MakeReservationNumber(slot.Date, slot.ThemeID, slot.BranchID, req.PhoneNumber, s.rand)
		err = s.store.CreateReservation(ctx, res)
	}
	if err != nil {
		return nil, err
	}

	s.publishReservationEvent(events.EventReservationCreated, res)
	if s.logger != nil {
		s.logger.Info().
			Int64("reservation_id", res.ID).
			Str("reservation_number", res.ReservationNumber).
			Int64("slot_id", res.SlotID).
			Bool("member", actor.IsMember()).
			Msg("reservation created")
	}

	view := newReservationView(res)
	return &view, nil
}

// LookupAsGuest finds a reservation by the exact triple and returns a
// masked view. A miss on any field is indistinguishable from a missing
// reservation.
func (s *ReservationService) LookupAsGuest(ctx context.Context, req GuestLookupRequest) (*ReservationView, error) {
	if req.ReservationNumber == "" || req.BookerName == "" || req.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: reservation number, booker name and phone number are required", ErrInvalidInput)
	}

	res, err := s.store.FindGuestReservation(ctx, req.ReservationNumber, req.BookerName, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	view := newMaskedReservationView(res)
	return &view, nil
}

// ListForMember returns one page of the actor's own reservations,
// newest first.
func (s *ReservationService) ListForMember(ctx context.Context, actor models.Actor, page, pageSize int) (*ReservationPage, error) {
	if !actor.IsMember() {
		return nil, ErrMemberRequired
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	rows, total, err := s.store.ListByUser(ctx, actor.Member.ID, page, pageSize)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, newReservationView(r))
	}
	return &ReservationPage{
		Reservations: views,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
	}, nil
}

// Update changes the contact details on a reservation and reports how
// many rows the change touched. Members may only touch their own
// active reservations; guests must present the stored phone number. In
// both paths an identity mismatch affects zero rows without an error,
// so the channel leaks nothing about which field was wrong.
func (s *ReservationService) Update(ctx context.Context, actor models.Actor, req UpdateReservationRequest) (int64, error) {
	if req.BookerName == "" || req.PhoneNumber == "" {
		return 0, fmt.Errorf("%w: booker name and phone number are required", ErrInvalidInput)
	}

	var (
		affected int64
		err      error
	)
	if actor.IsMember() {
		affected, err = s.store.UpdateForMember(ctx, req.ReservationID, actor.Member.ID, req.BookerName, req.PhoneNumber)
	} else {
		if req.CheckPhoneNumber == "" {
			return 0, fmt.Errorf("%w: check phone number is required for guest updates", ErrInvalidInput)
		}
		affected, err = s.store.UpdateForGuest(ctx, req.ReservationID, req.CheckPhoneNumber, req.BookerName, req.PhoneNumber)
	}
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}

	if res, getErr := s.store.GetReservation(ctx, req.ReservationID); getErr == nil {
		s.publishReservationEvent(events.EventReservationUpdated, res)
	}
	return affected, nil
}

// Search runs the back-office filter. Admin only; views are unmasked.
func (s *ReservationService) Search(ctx context.Context, actor models.Actor, req SearchRequest) ([]ReservationView, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	rows, err := s.store.SearchReservations(ctx, req.BookerName, req.PhoneNumber, req.ReservationID)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, newReservationView(r))
	}
	return views, nil
}

// Cancel flips an active reservation to canceled and releases its
// slot. Only the owning member or an admin may cancel through this
// path; guest cancellation goes through the guest lookup flow first.
func (s *ReservationService) Cancel(ctx context.Context, actor models.Actor, reservationID int64) error {
	if !actor.IsMember() {
		return ErrMemberRequired
	}

	res, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if !res.OwnedBy(actor.Member.ID) && !actor.IsAdmin() {
		return ErrNotAuthorized
	}

	if err := s.store.CancelReservation(ctx, reservationID); err != nil {
		return err
	}

	res.Status = models.StatusCanceled
	s.publishReservationEvent(events.EventReservationCanceled, res)
	if s.logger != nil {
		s.logger.Info().
			Int64("reservation_id", reservationID).
			Int64("user_id", actor.Member.ID).
			Msg("reservation canceled")
	}
	return nil
}

// OpenSlots lists bookable slots for a branch and date, hiding slots
// that are closed or not shown.
func (s *ReservationService) OpenSlots(ctx context.Context, branchID int64, date time.Time) ([]*models.Slot, error) {
	return s.store.GetOpenSlots(ctx, branchID, date)
}

func (s *ReservationService) publishReservationEvent(eventType string, res *models.Reservation) {
	if s.events == nil {
		return
	}
	payload := events.ReservationEventPayload{
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		SlotID:            res.SlotID,
		BranchID:          res.BranchID,
		ThemeID:           res.ThemeID,
		Status:            res.Status,
	}
	if res.UserID != nil {
		payload.UserID = *res.UserID
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish reservation event")
	}
}
