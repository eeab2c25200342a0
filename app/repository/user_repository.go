package repository

import (
	"strings"

	"github.com/fortifyapp/fortify/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash retrieves a user by the sha256 hash of their API key
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, error) {
	if hash == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.Where("api_key_hash = ?", hash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves changes to an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ListActive retrieves all active users, optionally filtered to those
// carrying at least one of the given campaign tags.
func (r *userRepository) ListActive(tags []string) ([]models.User, error) {
	var users []models.User
	query := r.db.Where("status = ?", models.STATUS_ACTIVE)
	if len(tags) > 0 {
		tagQuery := r.db
		for i, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			like := "%" + tag + "%"
			if i == 0 {
				tagQuery = r.db.Where("tags LIKE ?", like)
			} else {
				tagQuery = tagQuery.Or("tags LIKE ?", like)
			}
		}
		query = query.Where(tagQuery)
	}
	err := query.Order("id ASC").Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountActive returns the number of active users
func (r *userRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("status = ?", models.STATUS_ACTIVE).Count(&count).Error
	return count, err
}
