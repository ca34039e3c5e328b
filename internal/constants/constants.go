package constants

import "time"

// Session and context keys
const (
	SessionCookieName     = "cse_session"
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	ContextKeyRequestID   = "request_id"
	HeaderRequestID       = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Validation limits
const (
	MinPasswordLength            = 8
	MinUserNameLength            = 2
	MinFeedbackSubjectLength     = 3
	MinFeedbackDescriptionLength = 10
	MinMinuteContentLength       = 50
	MaxSignatureCommentLength    = 500
)

// DefaultFeedbackLeadTime is how long before a meeting feedback submission
// closes when no explicit deadline is given.
const DefaultFeedbackLeadTime = 48 * time.Hour

// DefaultMailConcurrency bounds parallel convocation emails.
const DefaultMailConcurrency = 4
