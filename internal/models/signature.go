package models

import "time"

// Signature is unique per (minute, user); the index enforces it.
type Signature struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	MinuteID  uint64    `gorm:"not null;uniqueIndex:idx_signatures_minute_user" json:"minute_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_signatures_minute_user;index" json:"user_id"`
	SignedAt  time.Time `gorm:"not null" json:"signed_at"`
	Comments  *string   `gorm:"type:text" json:"comments"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User   *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Minute *MeetingMinute `gorm:"foreignKey:MinuteID" json:"minute,omitempty"`
}

// SignatureProgress summarizes a minute's signatures against the quorum.
type SignatureProgress struct {
	Count    int64 `json:"count"`
	Required int64 `json:"required"`
	Complete bool  `json:"complete"`
}

// NewSignatureProgress builds a progress summary. A zero quorum never
// counts as complete.
func NewSignatureProgress(count, required int64) SignatureProgress {
	return SignatureProgress{
		Count:    count,
		Required: required,
		Complete: required > 0 && count >= required,
	}
}
