package models

import "time"

// AgendaItem positions are 1-based and contiguous within a meeting.
type AgendaItem struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	MeetingID   uint64    `gorm:"not null;index" json:"meeting_id"`
	Order       int       `gorm:"column:position;not null" json:"order"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Duration    *int      `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
