package domain

import (
	"context"
	"time"

	"slotbook/internal/models"
)

// Store is the persistence capability consumed by the booking engine
// and the user service. Implemented by database.DB.
type Store interface {
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	CreateSlot(ctx context.Context, slot *models.Slot) error
	GetOpenSlots(ctx context.Context, branchID int64, date time.Time) ([]*models.Slot, error)
	SetSlotVisibility(ctx context.Context, id int64, opened, shown bool) error

	CreateReservation(ctx context.Context, res *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	FindGuestReservation(ctx context.Context, number, bookerName, phoneNumber string) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Reservation, int64, error)
	UpdateForMember(ctx context.Context, id, userID int64, bookerName, phoneNumber string) (int64, error)
	UpdateForGuest(ctx context.Context, id int64, checkPhone, bookerName, phoneNumber string) (int64, error)
	SearchReservations(ctx context.Context, bookerName, phoneNumber *string, id *int64) ([]*models.Reservation, error)
	CancelReservation(ctx context.Context, id int64) error

	GetBranch(ctx context.Context, id int64) (*models.Branch, error)
	GetTheme(ctx context.Context, id int64) (*models.Theme, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByLoginID(ctx context.Context, loginID string) (*models.User, error)
	FindUserByInfo(ctx context.Context, loginID, nickname, phoneNumber string) (*models.User, error)
	DeactivateUser(ctx context.Context, id int64) (int64, error)
}

// Clock abstracts wall-clock reads so time-dependent rules (slot in
// the past, token expiry) stay testable.
type Clock interface {
	Now() time.Time
}

// Rand supplies the random suffix for reservation numbers.
type Rand interface {
	Intn(n int) int
}

// PasswordHasher hides the hashing mechanics from the user service.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, digest string) bool
}

// CacheRepository backs the login throttle and the open-slot listing
// cache. Implementations may be redis, in-memory, or a failover pair.
type CacheRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	GetSlots(ctx context.Context, key string) ([]*models.Slot, error)
	SetSlots(ctx context.Context, key string, slots []*models.Slot, ttl time.Duration) error
	InvalidateSlots(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReservationExporter writes a back-office workbook for a date range.
type ReservationExporter interface {
	ExportReservations(ctx context.Context, start, end time.Time) (string, error)
}
