package repository

import (
	"github.com/fortifyapp/fortify/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	ListActive(tags []string) ([]models.User, error)
	Count() (int64, error)
	CountActive() (int64, error)
}

// CampaignRepository defines the interface for email campaign persistence
type CampaignRepository interface {
	Create(campaign *models.EmailCampaign) error
	Update(campaign *models.EmailCampaign) error
	GetByPublicID(publicID string) (*models.EmailCampaign, error)
	List() ([]models.EmailCampaign, error)
	Count() (int64, error)
	CreateSendLog(logEntry *models.EmailSendLog) error
	ListSendLogs(campaignID uint) ([]models.EmailSendLog, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User     UserRepository
	Campaign CampaignRepository
}
