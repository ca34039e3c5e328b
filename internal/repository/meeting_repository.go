package repository

import (
	"time"

	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMeetingRepository is a GORM implementation of MeetingRepository
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &GormMeetingRepository{db: db}
}

// Create inserts the meeting together with meeting.Participants and
// meeting.AgendaItems.
func (r *GormMeetingRepository) Create(meeting *models.Meeting) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		participants := meeting.Participants
		items := meeting.AgendaItems
		meeting.Participants = nil
		meeting.AgendaItems = nil

		if err := tx.Omit(clause.Associations).Create(meeting).Error; err != nil {
			return err
		}

		for i := range participants {
			participants[i].MeetingID = meeting.ID
		}
		for i := range items {
			items[i].MeetingID = meeting.ID
		}

		if len(participants) > 0 {
			if err := tx.Omit(clause.Associations).Create(&participants).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		meeting.Participants = participants
		meeting.AgendaItems = items
		return nil
	})
}

// FindByID finds a meeting by ID with optional preloading
func (r *GormMeetingRepository) FindByID(id uint64, preload ...string) (*models.Meeting, error) {
	var meeting models.Meeting
	query := r.db

	for _, p := range preload {
		switch p {
		case "AgendaItems":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			})
		default:
			query = query.Preload(p)
		}
	}

	if err := query.First(&meeting, id).Error; err != nil {
		return nil, err
	}

	return &meeting, nil
}

// List retrieves meetings with filtering and pagination, latest first
func (r *GormMeetingRepository) List(filter MeetingFilter) ([]models.Meeting, int64, error) {
	query := r.db.Model(&models.Meeting{})

	if filter.Status != nil {
		query = query.Where("meetings.status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("meetings.date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("meetings.date < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("meetings.date DESC").Order("meetings.id DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	var meetings []models.Meeting
	if err := listQuery.Preload("CreatedBy").Find(&meetings).Error; err != nil {
		return nil, 0, err
	}

	return meetings, total, nil
}

// Update saves meeting fields. The dispatch marker is never written here.
func (r *GormMeetingRepository) Update(meeting *models.Meeting, agenda []models.AgendaItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Meeting{}).
			Where("id = ?", meeting.ID).
			Updates(map[string]interface{}{
				"date":              meeting.Date,
				"time":              meeting.Time,
				"type":              meeting.Type,
				"status":            meeting.Status,
				"location":          meeting.Location,
				"feedback_deadline": meeting.FeedbackDeadline,
				"updated_at":        time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}

		if agenda == nil {
			return nil
		}

		if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&models.AgendaItem{}).Error; err != nil {
			return err
		}
		for i := range agenda {
			agenda[i].ID = 0
			agenda[i].MeetingID = meeting.ID
		}
		if len(agenda) > 0 {
			if err := tx.Create(&agenda).Error; err != nil {
				return err
			}
		}
		meeting.AgendaItems = agenda
		return nil
	})
}

// Delete removes a meeting and everything it owns except a minute, which
// callers must rule out first.
func (r *GormMeetingRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", id).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meeting_id = ?", id).Delete(&models.AgendaItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meeting_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Meeting{}, id).Error
	})
}

// HasMinute reports whether a minute exists for the meeting
func (r *GormMeetingRepository) HasMinute(id uint64) (bool, error) {
	var count int64
	if err := r.db.Model(&models.MeetingMinute{}).Where("meeting_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClaimConvocation sets the dispatch marker with a conditional update so
// that only one caller can win.
func (r *GormMeetingRepository) ClaimConvocation(id uint64, at time.Time) (bool, error) {
	result := r.db.Model(&models.Meeting{}).
		Where("id = ? AND convocation_sent_at IS NULL", id).
		Updates(map[string]interface{}{
			"convocation_sent_at": at,
			"status":              models.MeetingStatusConvocationSent,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseConvocation clears the dispatch marker and restores status
func (r *GormMeetingRepository) ReleaseConvocation(id uint64, status models.MeetingStatus) error {
	return r.db.Model(&models.Meeting{}).
		Where("id = ? AND convocation_sent_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"convocation_sent_at": nil,
			"status":              status,
		}).Error
}

// UpdateParticipantStatus sets a participant's attendance status
func (r *GormMeetingRepository) UpdateParticipantStatus(meetingID, userID uint64, status models.ParticipantStatus) error {
	return r.db.Model(&models.Participant{}).
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Update("status", status).Error
}

// FindParticipant finds a participant link
func (r *GormMeetingRepository) FindParticipant(meetingID, userID uint64) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.Preload("User").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}
