package repository

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
)

// GormAgendaItemRepository is a GORM implementation of AgendaItemRepository
type GormAgendaItemRepository struct {
	db *gorm.DB
}

// NewAgendaItemRepository creates a new AgendaItemRepository
func NewAgendaItemRepository(db *gorm.DB) AgendaItemRepository {
	return &GormAgendaItemRepository{db: db}
}

// FindByID finds an agenda item by ID
func (r *GormAgendaItemRepository) FindByID(id uint64) (*models.AgendaItem, error) {
	var item models.AgendaItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByMeeting lists a meeting's items by position
func (r *GormAgendaItemRepository) ListByMeeting(meetingID uint64) ([]models.AgendaItem, error) {
	var items []models.AgendaItem
	if err := r.db.Where("meeting_id = ?", meetingID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Insert places item at item.Order. Out-of-range positions append.
func (r *GormAgendaItemRepository) Insert(item *models.AgendaItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AgendaItem{}).Where("meeting_id = ?", item.MeetingID).Count(&count).Error; err != nil {
			return err
		}

		if item.Order < 1 || int64(item.Order) > count {
			item.Order = int(count) + 1
		} else {
			err := tx.Model(&models.AgendaItem{}).
				Where("meeting_id = ? AND position >= ?", item.MeetingID, item.Order).
				Update("position", gorm.Expr("position + 1")).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(item).Error
	})
}

// Update saves title, description and duration
func (r *GormAgendaItemRepository) Update(item *models.AgendaItem) error {
	return r.db.Model(&models.AgendaItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":       item.Title,
			"description": item.Description,
			"duration":    item.Duration,
		}).Error
}

// Delete removes an item and closes the gap
func (r *GormAgendaItemRepository) Delete(item *models.AgendaItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AgendaItem{}, item.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.AgendaItem{}).
			Where("meeting_id = ? AND position > ?", item.MeetingID, item.Order).
			Update("position", gorm.Expr("position - 1")).Error
	})
}

// Reorder assigns positions 1..n following orderedIDs. Callers must pass
// every item of the meeting exactly once.
func (r *GormAgendaItemRepository) Reorder(meetingID uint64, orderedIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(&models.AgendaItem{}).
				Where("id = ? AND meeting_id = ?", id, meetingID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
