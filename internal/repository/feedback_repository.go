package repository

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeedbackRepository is a GORM implementation of FeedbackRepository
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

func (r *GormFeedbackRepository) Create(feedback *models.Feedback) error {
	return r.db.Omit(clause.Associations).Create(feedback).Error
}

func (r *GormFeedbackRepository) FindByID(id uint64, preload ...string) (*models.Feedback, error) {
	var feedback models.Feedback
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&feedback, id).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// List returns feedback newest first
func (r *GormFeedbackRepository) List(filter FeedbackFilter) ([]models.Feedback, int64, error) {
	query := r.db.Model(&models.Feedback{})

	if filter.MeetingID != nil {
		query = query.Where("feedbacks.meeting_id = ?", *filter.MeetingID)
	}
	if filter.SubmittedByID != nil {
		query = query.Where("feedbacks.submitted_by_id = ?", *filter.SubmittedByID)
	}
	if filter.Status != nil {
		query = query.Where("feedbacks.status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("feedbacks.category = ?", *filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("feedbacks.submitted_at DESC").Order("feedbacks.id DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	var feedbacks []models.Feedback
	if err := listQuery.Preload("SubmittedBy").Find(&feedbacks).Error; err != nil {
		return nil, 0, err
	}
	return feedbacks, total, nil
}

func (r *GormFeedbackRepository) Update(feedback *models.Feedback) error {
	return r.db.Omit(clause.Associations).Save(feedback).Error
}

func (r *GormFeedbackRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Feedback{}, id).Error
}
