package models

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ProviderApplication = "application"
)

const (
	// DefaultPageSize is the page size for member reservation listings.
	DefaultPageSize = 10

	// LoginRateLimit is the number of login attempts allowed per window.
	LoginRateLimit = 10

	// LoginRateWindow is the login throttle window in seconds.
	LoginRateWindow = 60

	// SlotCacheTTL is the open-slot listing cache lifetime in seconds.
	SlotCacheTTL = 60

	// WorkerQueueSize bounds the export worker queue.
	WorkerQueueSize = 64
)
