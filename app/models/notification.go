package models

import (
	"time"
)

const (
	NotificationTypeSubscriptionActivated = "subscription_activated"
	NotificationTypeSubscriptionCancelled = "subscription_cancelled"
	NotificationTypePaymentCompleted      = "payment_completed"
	NotificationTypePaymentFailed         = "payment_failed"
)

// Notification is a user-facing billing notification. Rows are immutable
// except for the read flag; each user keeps at most the 50 newest entries.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PublicID  string    `gorm:"type:char(36);uniqueIndex" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
