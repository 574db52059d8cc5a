package database

import "errors"

var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotInPast          = errors.New("slot is in the past")
	ErrSlotAlreadyReserved = errors.New("slot is already reserved")
	ErrSlotForbidden       = errors.New("slot is closed or hidden")

	ErrBranchNotFound  = errors.New("branch not found")
	ErrThemeNotFound   = errors.New("theme not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrReservationNotFound = errors.New("reservation not found")

	// ErrDuplicateReservationNumber is returned when the generated
	// reservation number collides with an existing one. The random
	// suffix is only 3 digits, so the store enforces uniqueness and
	// the caller retries with a fresh draw.
	ErrDuplicateReservationNumber = errors.New("reservation number already exists")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user is deactivated")
	ErrDuplicateUserInfo  = errors.New("user info already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
