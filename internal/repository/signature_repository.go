package repository

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSignatureRepository is a GORM implementation of SignatureRepository
type GormSignatureRepository struct {
	db *gorm.DB
}

// NewSignatureRepository creates a new SignatureRepository
func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &GormSignatureRepository{db: db}
}

// CreateAndPromote inserts the signature, recounts it against the live
// quorum and promotes the minute with a conditional update. The unique
// (minute_id, user_id) index rejects concurrent duplicates; ErrStateChanged
// is returned if the minute left PENDING_SIGNATURE before the insert.
func (r *GormSignatureRepository) CreateAndPromote(signature *models.Signature) (bool, error) {
	promoted := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&models.MeetingMinute{}).
			Where("id = ? AND status = ?", signature.MinuteID, models.MinuteStatusPendingSignature).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending == 0 {
			return ErrStateChanged
		}

		if err := tx.Omit(clause.Associations).Create(signature).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Signature{}).Where("minute_id = ?", signature.MinuteID).Count(&count).Error; err != nil {
			return err
		}

		required, err := countActiveManagers(tx)
		if err != nil {
			return err
		}

		if count < required {
			return nil
		}

		result := tx.Model(&models.MeetingMinute{}).
			Where("id = ? AND status = ?", signature.MinuteID, models.MinuteStatusPendingSignature).
			Update("status", models.MinuteStatusSigned)
		if result.Error != nil {
			return result.Error
		}
		promoted = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return promoted, nil
}

// FindByID finds a signature by ID with optional preloading
func (r *GormSignatureRepository) FindByID(id uint64, preload ...string) (*models.Signature, error) {
	var signature models.Signature
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&signature, id).Error; err != nil {
		return nil, err
	}
	return &signature, nil
}

// FindByMinuteAndUser finds the signature of a user on a minute
func (r *GormSignatureRepository) FindByMinuteAndUser(minuteID, userID uint64) (*models.Signature, error) {
	var signature models.Signature
	if err := r.db.Where("minute_id = ? AND user_id = ?", minuteID, userID).First(&signature).Error; err != nil {
		return nil, err
	}
	return &signature, nil
}

// List lists signatures by minute and/or user, oldest first
func (r *GormSignatureRepository) List(filter SignatureFilter) ([]models.Signature, error) {
	query := r.db.Model(&models.Signature{})

	if filter.MinuteID != nil {
		query = query.Where("minute_id = ?", *filter.MinuteID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var signatures []models.Signature
	if err := query.Preload("User").Order("signed_at ASC").Order("id ASC").Find(&signatures).Error; err != nil {
		return nil, err
	}
	return signatures, nil
}

// DeleteIfPending removes a signature only while its minute is
// PENDING_SIGNATURE, checked in the same statement.
func (r *GormSignatureRepository) DeleteIfPending(id uint64) (bool, error) {
	pendingMinute := r.db.Model(&models.MeetingMinute{}).
		Select("1").
		Where("meeting_minutes.id = signatures.minute_id").
		Where("meeting_minutes.status = ?", models.MinuteStatusPendingSignature)

	result := r.db.Where("id = ?", id).
		Where("EXISTS (?)", pendingMinute).
		Delete(&models.Signature{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByMinute counts a minute's signatures
func (r *GormSignatureRepository) CountByMinute(minuteID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Signature{}).Where("minute_id = ?", minuteID).Count(&count).Error
	return count, err
}
