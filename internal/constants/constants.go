package constants

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	ContextKeyProject   = "project"
)

// Authentication
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
	TokenTypeAccess   = "access"
	TokenTypeRefresh  = "refresh"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateLayout is the wire format for calendar dates (sprint start/end).
const DateLayout = "2006-01-02"
