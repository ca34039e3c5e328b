package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yukikurage/cse-council-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "motdepasse-solide"

var (
	userCounter  uint64
	passwordHash []byte
)

func init() {
	var err error
	passwordHash, err = bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
}

// UserOption configures a fixture user.
type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

func WithName(name string) UserOption {
	return func(u *models.User) { u.Name = name }
}

func Inactive() UserOption {
	return func(u *models.User) { u.IsActive = false }
}

// CreateUser inserts an active user with the given role.
func CreateUser(tb testing.TB, db *gorm.DB, role models.UserRole, opts ...UserOption) *models.User {
	tb.Helper()

	idx := atomic.AddUint64(&userCounter, 1)
	user := &models.User{
		Email:        fmt.Sprintf("user%03d@cse.example", idx),
		PasswordHash: string(passwordHash),
		Name:         fmt.Sprintf("Utilisateur %03d", idx),
		Role:         role,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to create user: %v", err)
	}
	return user
}

// MeetingOption configures a fixture meeting.
type MeetingOption func(*meetingFixture)

type meetingFixture struct {
	meeting      models.Meeting
	participants []uint64
	agenda       []string
}

// WithParticipants invites the given users.
func WithParticipants(users ...*models.User) MeetingOption {
	return func(f *meetingFixture) {
		for _, u := range users {
			f.participants = append(f.participants, u.ID)
		}
	}
}

// WithAgenda adds agenda items with the given titles, in order.
func WithAgenda(titles ...string) MeetingOption {
	return func(f *meetingFixture) { f.agenda = append(f.agenda, titles...) }
}

// WithFeedbackDeadline sets the feedback deadline.
func WithFeedbackDeadline(t time.Time) MeetingOption {
	return func(f *meetingFixture) { f.meeting.FeedbackDeadline = &t }
}

// WithMeetingStatus sets the meeting status.
func WithMeetingStatus(s models.MeetingStatus) MeetingOption {
	return func(f *meetingFixture) { f.meeting.Status = s }
}

// ConvocationSentAt marks the convocation as already sent.
func ConvocationSentAt(t time.Time) MeetingOption {
	return func(f *meetingFixture) {
		f.meeting.ConvocationSentAt = &t
		f.meeting.Status = models.MeetingStatusConvocationSent
	}
}

// CreateMeeting inserts a PLANNED ordinary meeting a week after
// ReferenceTime at 14:00.
func CreateMeeting(tb testing.TB, db *gorm.DB, creator *models.User, opts ...MeetingOption) *models.Meeting {
	tb.Helper()

	location := "Salle du conseil"
	f := &meetingFixture{
		meeting: models.Meeting{
			Date:        time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			Time:        "14:00",
			Type:        models.MeetingTypeOrdinary,
			Status:      models.MeetingStatusPlanned,
			Location:    &location,
			CreatedByID: creator.ID,
		},
	}
	for _, opt := range opts {
		opt(f)
	}

	meeting := &f.meeting
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(meeting).Error; err != nil {
			return err
		}
		for _, userID := range f.participants {
			p := &models.Participant{MeetingID: meeting.ID, UserID: userID, Status: models.ParticipantStatusInvited}
			if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
				return err
			}
		}
		for i, title := range f.agenda {
			item := &models.AgendaItem{MeetingID: meeting.ID, Order: i + 1, Title: title}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		tb.Fatalf("failed to create meeting: %v", err)
	}
	return meeting
}

// MinuteContent is long enough to pass minute validation.
const MinuteContent = "## Ordre du jour\n\nLe budget des activités sociales est adopté à l'unanimité."

// CreateMinute inserts a minute for meeting in the given status.
func CreateMinute(tb testing.TB, db *gorm.DB, meeting *models.Meeting, author *models.User, status models.MinuteStatus) *models.MeetingMinute {
	tb.Helper()

	minute := &models.MeetingMinute{
		MeetingID:   meeting.ID,
		Content:     MinuteContent,
		Status:      status,
		CreatedByID: author.ID,
	}
	if err := db.Omit(clause.Associations).Create(minute).Error; err != nil {
		tb.Fatalf("failed to create minute: %v", err)
	}
	return minute
}

// CreateSignature inserts a signature without any quorum check.
func CreateSignature(tb testing.TB, db *gorm.DB, minute *models.MeetingMinute, user *models.User, at time.Time) *models.Signature {
	tb.Helper()

	signature := &models.Signature{MinuteID: minute.ID, UserID: user.ID, SignedAt: at}
	if err := db.Omit(clause.Associations).Create(signature).Error; err != nil {
		tb.Fatalf("failed to create signature: %v", err)
	}
	return signature
}

// CreateFeedback inserts a PENDING feedback.
func CreateFeedback(tb testing.TB, db *gorm.DB, meeting *models.Meeting, author *models.User, at time.Time) *models.Feedback {
	tb.Helper()

	feedback := &models.Feedback{
		MeetingID:     meeting.ID,
		SubmittedByID: author.ID,
		Subject:       "Horaires",
		Description:   "Les horaires d'été ne sont pas affichés.",
		Category:      models.FeedbackCategoryWorkOrganization,
		Status:        models.FeedbackStatusPending,
		SubmittedAt:   at,
	}
	if err := db.Omit(clause.Associations).Create(feedback).Error; err != nil {
		tb.Fatalf("failed to create feedback: %v", err)
	}
	return feedback
}
