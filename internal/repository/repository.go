package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
)

// ErrStateChanged is returned when a conditional write finds the row no
// longer in the state it was read in.
var ErrStateChanged = errors.New("record state changed concurrently")

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Translated GORM errors are checked first; the message fallback covers
// dialects without an error translator.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users ordered active first, then by name
	List(filter UserFilter) ([]models.User, error)

	// Update saves a user
	Update(user *models.User) error

	// FindActiveByIDs returns the active users among ids
	FindActiveByIDs(ids []uint64) ([]models.User, error)

	// CountActiveManagers counts active ADMIN and PRESIDENT users
	CountActiveManagers() (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role     *models.UserRole
	IsActive *bool
}

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create inserts a meeting with its participants and agenda in one transaction
	Create(meeting *models.Meeting) error

	// FindByID finds a meeting by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Meeting, error)

	// List retrieves meetings with filtering and pagination
	List(filter MeetingFilter) ([]models.Meeting, int64, error)

	// Update saves meeting fields; a non-nil agenda replaces the existing one
	Update(meeting *models.Meeting, agenda []models.AgendaItem) error

	// Delete removes a meeting and its participants, agenda and feedback
	Delete(id uint64) error

	// HasMinute reports whether a minute exists for the meeting
	HasMinute(id uint64) (bool, error)

	// ClaimConvocation sets the dispatch marker if unset and reports whether this call set it
	ClaimConvocation(id uint64, at time.Time) (bool, error)

	// ReleaseConvocation clears the dispatch marker and restores status
	ReleaseConvocation(id uint64, status models.MeetingStatus) error

	// UpdateParticipantStatus sets a participant's attendance status
	UpdateParticipantStatus(meetingID, userID uint64, status models.ParticipantStatus) error

	// FindParticipant finds a participant link
	FindParticipant(meetingID, userID uint64) (*models.Participant, error)
}

// MeetingFilter holds filtering options for listing meetings
type MeetingFilter struct {
	Status *models.MeetingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// AgendaItemRepository defines the interface for agenda data access. Every
// mutation keeps positions contiguous from 1.
type AgendaItemRepository interface {
	// FindByID finds an agenda item by ID
	FindByID(id uint64) (*models.AgendaItem, error)

	// ListByMeeting lists a meeting's items by position
	ListByMeeting(meetingID uint64) ([]models.AgendaItem, error)

	// Insert places item at item.Order, shifting later items; Order 0 appends
	Insert(item *models.AgendaItem) error

	// Update saves title, description and duration
	Update(item *models.AgendaItem) error

	// Delete removes an item and closes the gap
	Delete(item *models.AgendaItem) error

	// Reorder assigns positions 1..n following orderedIDs
	Reorder(meetingID uint64, orderedIDs []uint64) error
}

// FeedbackRepository defines the interface for feedback data access
type FeedbackRepository interface {
	Create(feedback *models.Feedback) error
	FindByID(id uint64, preload ...string) (*models.Feedback, error)
	List(filter FeedbackFilter) ([]models.Feedback, int64, error)
	Update(feedback *models.Feedback) error
	Delete(id uint64) error
}

// FeedbackFilter holds filtering options for listing feedback
type FeedbackFilter struct {
	MeetingID     *uint64
	SubmittedByID *uint64
	Status        *models.FeedbackStatus
	Category      *models.FeedbackCategory
	Limit         int
	Offset        int
}

// MinuteRepository defines the interface for minute data access
type MinuteRepository interface {
	// Create inserts a minute; a second minute for a meeting fails with a duplicate key
	Create(minute *models.MeetingMinute) error

	// FindByID finds a minute by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.MeetingMinute, error)

	// List retrieves minutes with filtering and pagination
	List(filter MinuteFilter) ([]models.MeetingMinute, int64, error)

	// Update writes content and status only if the stored status still equals expected
	Update(minute *models.MeetingMinute, expected models.MinuteStatus) (bool, error)

	// Delete removes a minute and its signatures unless it is published
	Delete(id uint64) (bool, error)
}

// MinuteFilter holds filtering options for listing minutes
type MinuteFilter struct {
	MeetingID *uint64
	Status    *models.MinuteStatus
	Limit     int
	Offset    int
}

// SignatureRepository defines the interface for signature data access
type SignatureRepository interface {
	// CreateAndPromote records a signature and promotes the minute to SIGNED
	// once the quorum is met, in one transaction. It reports whether this
	// call performed the promotion.
	CreateAndPromote(signature *models.Signature) (bool, error)

	// FindByID finds a signature by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Signature, error)

	// FindByMinuteAndUser finds the signature of a user on a minute
	FindByMinuteAndUser(minuteID, userID uint64) (*models.Signature, error)

	// List lists signatures by minute and/or user
	List(filter SignatureFilter) ([]models.Signature, error)

	// DeleteIfPending removes a signature only while its minute awaits signatures
	DeleteIfPending(id uint64) (bool, error)

	// CountByMinute counts a minute's signatures
	CountByMinute(minuteID uint64) (int64, error)
}

// SignatureFilter holds filtering options for listing signatures
type SignatureFilter struct {
	MinuteID *uint64
	UserID   *uint64
}
