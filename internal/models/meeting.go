package models

import (
	"fmt"
	"time"
)

type MeetingType string

const (
	MeetingTypeOrdinary      MeetingType = "ORDINARY"
	MeetingTypeExtraordinary MeetingType = "EXTRAORDINARY"
)

func (t MeetingType) Valid() bool {
	return t == MeetingTypeOrdinary || t == MeetingTypeExtraordinary
}

type MeetingStatus string

const (
	MeetingStatusPlanned         MeetingStatus = "PLANNED"
	MeetingStatusConvocationSent MeetingStatus = "CONVOCATION_SENT"
	MeetingStatusInProgress      MeetingStatus = "IN_PROGRESS"
	MeetingStatusCompleted       MeetingStatus = "COMPLETED"
	MeetingStatusCancelled       MeetingStatus = "CANCELLED"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingStatusPlanned, MeetingStatusConvocationSent, MeetingStatusInProgress,
		MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

// FeedbackLeadTime is how long before the meeting feedback closes when no
// explicit deadline is given.
const FeedbackLeadTime = 48 * time.Hour

// Meeting owns its agenda, participants, feedback and at most one minute.
// ConvocationSentAt is the dispatch marker: once set the agenda is frozen
// and the convocation cannot be sent again.
type Meeting struct {
	ID                uint64        `gorm:"primarykey" json:"id"`
	Date              time.Time     `gorm:"not null;index" json:"date"`
	Time              string        `gorm:"type:varchar(5);not null" json:"time"`
	Type              MeetingType   `gorm:"type:varchar(20);not null" json:"type"`
	Status            MeetingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Location          *string       `gorm:"type:varchar(255)" json:"location"`
	FeedbackDeadline  *time.Time    `json:"feedback_deadline"`
	ConvocationSentAt *time.Time    `json:"convocation_sent_at"`
	CreatedByID       uint64        `gorm:"not null" json:"created_by_id"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relations
	CreatedBy    *User          `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Participants []Participant  `gorm:"foreignKey:MeetingID" json:"participants,omitempty"`
	AgendaItems  []AgendaItem   `gorm:"foreignKey:MeetingID" json:"agenda_items,omitempty"`
	Feedbacks    []Feedback     `gorm:"foreignKey:MeetingID" json:"feedbacks,omitempty"`
	Minute       *MeetingMinute `gorm:"foreignKey:MeetingID" json:"minute,omitempty"`
}

// ParseClock parses an HH:MM time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// StartsAt combines Date and Time in loc. A malformed Time falls back to
// midnight of Date.
func (m *Meeting) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := m.Date.Date()
	h, mi, err := ParseClock(m.Time)
	if err != nil {
		h, mi = 0, 0
	}
	return time.Date(y, mo, d, h, mi, 0, 0, loc)
}

// DefaultFeedbackDeadline returns the deadline used when none is supplied.
func DefaultFeedbackDeadline(startsAt time.Time) time.Time {
	return startsAt.Add(-FeedbackLeadTime)
}

// FeedbackOpen reports whether feedback may be submitted at now. The
// deadline itself is inclusive.
func (m *Meeting) FeedbackOpen(now time.Time) bool {
	return m.FeedbackDeadline == nil || !now.After(*m.FeedbackDeadline)
}

// CanOwnerModifyFeedback reports whether the submitter of a feedback may
// still edit or delete it. Managers are never gated.
func (m *Meeting) CanOwnerModifyFeedback(now time.Time, isManager bool) bool {
	return isManager || m.FeedbackOpen(now)
}

// ConvocationSent reports whether the dispatch marker is set.
func (m *Meeting) ConvocationSent() bool {
	return m.ConvocationSentAt != nil
}

// Deletable reports whether the meeting may be removed given whether a
// minute exists for it.
func (m *Meeting) Deletable(hasMinute bool) bool {
	if hasMinute {
		return false
	}
	return m.Status == MeetingStatusPlanned || m.Status == MeetingStatusConvocationSent
}
