package notifications

import (
	"context"

	"github.com/fortifyapp/fortify/app/models"
	"gorm.io/gorm"
)

type gormSink struct {
	db *gorm.DB
}

// NewSink creates a notification sink backed by GORM.
func NewSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

func (s *gormSink) Append(ctx context.Context, n *models.Notification) error {
	_ = ctx
	return s.db.Transaction(func(tx *gorm.DB) error {
		return AppendTx(tx, n)
	})
}

// AppendTx inserts a notification and evicts entries beyond MaxPerUser inside
// an existing transaction. The billing store uses it so a status write and
// its notification commit as one unit.
func AppendTx(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return err
	}

	// MySQL cannot delete from a table it selects from directly; the
	// derived table works around that.
	return tx.Exec(`
		DELETE FROM notifications WHERE user_id = ? AND id NOT IN (
			SELECT id FROM (
				SELECT id FROM notifications WHERE user_id = ? ORDER BY id DESC LIMIT ?
			) keep
		)`, n.UserID, n.UserID, MaxPerUser).Error
}

func (s *gormSink) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	_ = ctx
	var list []models.Notification
	err := s.db.Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}

func (s *gormSink) MarkRead(ctx context.Context, userID uint, publicID string) error {
	_ = ctx
	// Missing ids are a no-op, not an error.
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Update("is_read", true).Error
}

func (s *gormSink) CountUnread(ctx context.Context, userID uint) (int64, error) {
	_ = ctx
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
