package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusSuspended = "suspended"
)

// Subscription is the single current billing state of a user. A user has at
// most one row; every applied provider event rewrites it in place.
type Subscription struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Status             string         `gorm:"type:varchar(20);not null" json:"status"`
	BillingAgreementID string         `gorm:"type:varchar(191);default:'';index" json:"billing_agreement_id"`
	TrialEndDate       *time.Time     `gorm:"type:timestamp;default:null" json:"trial_end_date,omitempty"`
	LastEventID        string         `gorm:"type:varchar(191);default:''" json:"-"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"last_updated"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValidSubscriptionStatus reports whether s is one of the known states.
func IsValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionStatusTrial, SubscriptionStatusActive, SubscriptionStatusExpired,
		SubscriptionStatusCancelled, SubscriptionStatusSuspended:
		return true
	default:
		return false
	}
}
