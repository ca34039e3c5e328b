package models

import "time"

type FeedbackCategory string

const (
	FeedbackCategoryWorkingConditions FeedbackCategory = "WORKING_CONDITIONS"
	FeedbackCategoryWorkOrganization  FeedbackCategory = "WORK_ORGANIZATION"
	FeedbackCategoryHealthSafety      FeedbackCategory = "HEALTH_SAFETY"
	FeedbackCategoryTraining          FeedbackCategory = "TRAINING"
	FeedbackCategoryWagesBenefits     FeedbackCategory = "WAGES_BENEFITS"
	FeedbackCategoryOther             FeedbackCategory = "OTHER"
)

func (c FeedbackCategory) Valid() bool {
	switch c {
	case FeedbackCategoryWorkingConditions, FeedbackCategoryWorkOrganization,
		FeedbackCategoryHealthSafety, FeedbackCategoryTraining,
		FeedbackCategoryWagesBenefits, FeedbackCategoryOther:
		return true
	}
	return false
}

type FeedbackStatus string

const (
	FeedbackStatusPending    FeedbackStatus = "PENDING"
	FeedbackStatusInProgress FeedbackStatus = "IN_PROGRESS"
	FeedbackStatusAddressed  FeedbackStatus = "ADDRESSED"
	FeedbackStatusRejected   FeedbackStatus = "REJECTED"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackStatusPending, FeedbackStatusInProgress, FeedbackStatusAddressed, FeedbackStatusRejected:
		return true
	}
	return false
}

type Feedback struct {
	ID            uint64           `gorm:"primarykey" json:"id"`
	MeetingID     uint64           `gorm:"not null;index" json:"meeting_id"`
	SubmittedByID uint64           `gorm:"not null;index" json:"submitted_by_id"`
	Subject       string           `gorm:"type:varchar(255);not null" json:"subject"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	Category      FeedbackCategory `gorm:"type:varchar(30);not null" json:"category"`
	Status        FeedbackStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Response      *string          `gorm:"type:text" json:"response"`
	SubmittedAt   time.Time        `gorm:"not null" json:"submitted_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// Relations
	Meeting     *Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	SubmittedBy *User    `gorm:"foreignKey:SubmittedByID" json:"submitted_by,omitempty"`
}
