package repository

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users ordered active first, then by name
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, error) {
	query := r.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var users []models.User
	if err := query.Order("is_active DESC").Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update saves a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// FindActiveByIDs returns the active users among ids
func (r *GormUserRepository) FindActiveByIDs(ids []uint64) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ? AND is_active = ?", ids, true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountActiveManagers counts active ADMIN and PRESIDENT users
func (r *GormUserRepository) CountActiveManagers() (int64, error) {
	return countActiveManagers(r.db)
}

func countActiveManagers(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("role IN ? AND is_active = ?", models.ManagerRoles, true).
		Count(&count).Error
	return count, err
}
