package models

import "time"

const (
	CampaignStatusSending   = "sending"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// EmailCampaign records one bulk mailing run of the marketing flow.
type EmailCampaign struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	PublicID        string    `gorm:"type:char(36);uniqueIndex" json:"id"`
	Title           string    `gorm:"type:varchar(255)" json:"title"`
	Subject         string    `gorm:"type:varchar(255);not null" json:"subject"`
	Content         string    `gorm:"type:longtext;not null" json:"content"`
	Status          string    `gorm:"type:varchar(20);default:'sending'" json:"status"`
	TotalRecipients int       `gorm:"default:0" json:"total_recipients"`
	TotalSent       int       `gorm:"default:0" json:"total_sent"`
	TotalFailed     int       `gorm:"default:0" json:"total_failed"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EmailSendLog is one per-recipient delivery attempt within a campaign.
type EmailSendLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CampaignID uint      `gorm:"index;not null" json:"campaign_id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	Email      string    `gorm:"type:varchar(200);not null" json:"email"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"` // sent | failed
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
