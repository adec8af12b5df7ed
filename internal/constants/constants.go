package constants

import "time"

// Pagination
const (
	MinPage         = 1
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Search
const (
	// SearchMatchAll is the explicit "match everything" search term.
	SearchMatchAll = "*"
)

// Accounts
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Tasks
const (
	DefaultTaskStatus   = "pending"
	CompletedTaskStatus = "completed"
)

// Context keys
const (
	ContextKeyCurrentUser = "current_user"
	ContextKeyRequestID   = "request_id"
)

// Auth
const (
	BearerScheme    = "bearer"
	TokenTypeBearer = "bearer"
	HeaderRequestID = "X-Request-ID"
)

// DefaultTokenTTL is used when a non-positive TTL reaches the token manager.
const DefaultTokenTTL = 30 * time.Minute
