package repository

import (
	"errors"

	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errMinuteNotDeleted = errors.New("minute not deleted")

// GormMinuteRepository is a GORM implementation of MinuteRepository
type GormMinuteRepository struct {
	db *gorm.DB
}

// NewMinuteRepository creates a new MinuteRepository
func NewMinuteRepository(db *gorm.DB) MinuteRepository {
	return &GormMinuteRepository{db: db}
}

// Create inserts a minute. The unique meeting_id index rejects a second one.
func (r *GormMinuteRepository) Create(minute *models.MeetingMinute) error {
	return r.db.Omit(clause.Associations).Create(minute).Error
}

// FindByID finds a minute by ID with optional preloading
func (r *GormMinuteRepository) FindByID(id uint64, preload ...string) (*models.MeetingMinute, error) {
	var minute models.MeetingMinute
	query := r.db

	for _, p := range preload {
		switch p {
		case "Signatures":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("signed_at ASC")
			})
		default:
			query = query.Preload(p)
		}
	}

	if err := query.First(&minute, id).Error; err != nil {
		return nil, err
	}
	return &minute, nil
}

// List retrieves minutes with filtering and pagination
func (r *GormMinuteRepository) List(filter MinuteFilter) ([]models.MeetingMinute, int64, error) {
	query := r.db.Model(&models.MeetingMinute{})

	if filter.MeetingID != nil {
		query = query.Where("meeting_minutes.meeting_id = ?", *filter.MeetingID)
	}
	if filter.Status != nil {
		query = query.Where("meeting_minutes.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("meeting_minutes.created_at DESC").Order("meeting_minutes.id DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	var minutes []models.MeetingMinute
	if err := listQuery.Preload("Meeting").Find(&minutes).Error; err != nil {
		return nil, 0, err
	}
	return minutes, total, nil
}

// Update writes content and status with a compare-and-swap on the stored
// status. It reports false when another writer changed the status first.
func (r *GormMinuteRepository) Update(minute *models.MeetingMinute, expected models.MinuteStatus) (bool, error) {
	result := r.db.Model(&models.MeetingMinute{}).
		Where("id = ? AND status = ?", minute.ID, expected).
		Updates(map[string]interface{}{
			"content": minute.Content,
			"status":  minute.Status,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a minute and its signatures unless it is published. It
// reports false when the minute was published or already gone.
func (r *GormMinuteRepository) Delete(id uint64) (bool, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("minute_id = ?", id).Delete(&models.Signature{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND status <> ?", id, models.MinuteStatusPublished).
			Delete(&models.MeetingMinute{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Roll back the signature delete.
			return errMinuteNotDeleted
		}
		return nil
	})
	if errors.Is(err, errMinuteNotDeleted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
