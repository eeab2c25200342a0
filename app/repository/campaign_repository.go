package repository

import (
	"github.com/fortifyapp/fortify/app/models"
	"gorm.io/gorm"
)

// campaignRepository implements the CampaignRepository interface
type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new campaign repository instance
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(campaign *models.EmailCampaign) error {
	return r.db.Create(campaign).Error
}

func (r *campaignRepository) Update(campaign *models.EmailCampaign) error {
	return r.db.Save(campaign).Error
}

func (r *campaignRepository) GetByPublicID(publicID string) (*models.EmailCampaign, error) {
	var campaign models.EmailCampaign
	err := r.db.Where("public_id = ?", publicID).First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) List() ([]models.EmailCampaign, error) {
	var campaigns []models.EmailCampaign
	err := r.db.Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

func (r *campaignRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.EmailCampaign{}).Count(&count).Error
	return count, err
}

func (r *campaignRepository) CreateSendLog(logEntry *models.EmailSendLog) error {
	return r.db.Create(logEntry).Error
}

func (r *campaignRepository) ListSendLogs(campaignID uint) ([]models.EmailSendLog, error) {
	var logs []models.EmailSendLog
	err := r.db.Where("campaign_id = ?", campaignID).Order("id ASC").Find(&logs).Error
	return logs, err
}
