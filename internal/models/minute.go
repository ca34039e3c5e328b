package models

import (
	"slices"
	"time"
)

type MinuteStatus string

const (
	MinuteStatusDraft            MinuteStatus = "DRAFT"
	MinuteStatusPendingSignature MinuteStatus = "PENDING_SIGNATURE"
	MinuteStatusSigned           MinuteStatus = "SIGNED"
	MinuteStatusPublished        MinuteStatus = "PUBLISHED"
)

// minuteTransitions lists every legal target for each status. Self-loops
// are no-op updates.
var minuteTransitions = map[MinuteStatus][]MinuteStatus{
	MinuteStatusDraft:            {MinuteStatusDraft, MinuteStatusPendingSignature},
	MinuteStatusPendingSignature: {MinuteStatusPendingSignature, MinuteStatusDraft, MinuteStatusSigned},
	MinuteStatusSigned:           {MinuteStatusSigned, MinuteStatusPublished},
	MinuteStatusPublished:        {MinuteStatusPublished},
}

// MinuteStatuses returns all statuses in lifecycle order.
func MinuteStatuses() []MinuteStatus {
	return []MinuteStatus{MinuteStatusDraft, MinuteStatusPendingSignature, MinuteStatusSigned, MinuteStatusPublished}
}

func (s MinuteStatus) Valid() bool {
	_, ok := minuteTransitions[s]
	return ok
}

// CanTransitionTo reports whether to is a legal next status.
func (s MinuteStatus) CanTransitionTo(to MinuteStatus) bool {
	return slices.Contains(minuteTransitions[s], to)
}

// MeetingMinute is unique per meeting.
type MeetingMinute struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	MeetingID   uint64       `gorm:"not null;uniqueIndex" json:"meeting_id"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Status      MinuteStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedByID uint64       `gorm:"not null" json:"created_by_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Meeting    *Meeting    `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	CreatedBy  *User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Signatures []Signature `gorm:"foreignKey:MinuteID" json:"signatures,omitempty"`
}

// ContentEditable reports whether content may change.
func (m *MeetingMinute) ContentEditable() bool {
	return m.Status == MinuteStatusDraft
}

// Deletable reports whether the minute may be removed.
func (m *MeetingMinute) Deletable() bool {
	return m.Status != MinuteStatusPublished
}

// Signable reports whether the minute accepts signatures.
func (m *MeetingMinute) Signable() bool {
	return m.Status == MinuteStatusPendingSignature
}
