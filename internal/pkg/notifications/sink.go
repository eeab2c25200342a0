// Package notifications keeps the bounded per-user log of billing
// notifications. Each user keeps at most MaxPerUser entries; appends evict
// the oldest rows first.
package notifications

import (
	"context"

	"github.com/fortifyapp/fortify/app/models"
)

// MaxPerUser caps the notification log per user; appends beyond the cap
// silently evict the oldest entries.
const MaxPerUser = 50

// Sink handles notification persistence and retrieval.
type Sink interface {
	// Append stores a new notification and trims the user's log to MaxPerUser.
	Append(ctx context.Context, n *models.Notification) error

	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID uint) ([]models.Notification, error)

	// MarkRead flags a single notification as read. Unknown ids are a no-op.
	MarkRead(ctx context.Context, userID uint, publicID string) error

	// CountUnread returns the number of unread notifications for the user.
	CountUnread(ctx context.Context, userID uint) (int64, error)
}
