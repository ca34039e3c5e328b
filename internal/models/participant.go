package models

import "time"

type ParticipantStatus string

const (
	ParticipantStatusInvited   ParticipantStatus = "INVITED"
	ParticipantStatusConfirmed ParticipantStatus = "CONFIRMED"
	ParticipantStatusPresent   ParticipantStatus = "PRESENT"
	ParticipantStatusAbsent    ParticipantStatus = "ABSENT"
	ParticipantStatusExcused   ParticipantStatus = "EXCUSED"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantStatusInvited, ParticipantStatusConfirmed, ParticipantStatusPresent,
		ParticipantStatusAbsent, ParticipantStatusExcused:
		return true
	}
	return false
}

type Participant struct {
	MeetingID uint64            `gorm:"primaryKey;autoIncrement:false" json:"meeting_id"`
	UserID    uint64            `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Status    ParticipantStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
