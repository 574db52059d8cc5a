package models

import "time"

type Reservation struct {
	ID                int64     `json:"id"`
	ReservationNumber string    `json:"reservation_number"`
	BookerName        string    `json:"booker_name"`
	PhoneNumber       string    `json:"phone_number"`
	SlotID            int64     `json:"slot_id"`
	BranchID          int64     `json:"branch_id"`
	ThemeID           int64     `json:"theme_id"`
	PaymentID         int64     `json:"payment_id"`
	UserID            *int64    `json:"user_id,omitempty"` // nil for guest bookings
	Status            string    `json:"status"`            // active, canceled
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int64     `json:"version"`
}

// OwnedBy reports whether the reservation belongs to the given member.
func (r *Reservation) OwnedBy(userID int64) bool {
	return r.UserID != nil && *r.UserID == userID
}
