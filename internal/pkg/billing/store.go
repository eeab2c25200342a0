package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/internal/pkg/notifications"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MutateFunc rewrites a subscription record in place and optionally returns
// the notification raised by the transition. It runs inside the store's
// per-user critical section.
type MutateFunc func(sub *models.Subscription) (*models.Notification, error)

// SubscriptionStore owns subscription records. Writes to the same user are
// serialized; writes to different users never block each other. Apply
// commits the record change and its notification as one unit, and skips the
// whole unit when eventID matches the record's last applied event.
type SubscriptionStore interface {
	Get(ctx context.Context, userID uint) (*models.Subscription, error)
	FindByAgreementID(ctx context.Context, agreementID string) (*models.Subscription, error)

	// Apply returns false when the event was already applied (duplicate).
	Apply(ctx context.Context, userID uint, eventID string, mutate MutateFunc) (bool, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a subscription store backed by GORM.
func NewStore(db *gorm.DB) SubscriptionStore {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, userID uint) (*models.Subscription, error) {
	_ = ctx
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) FindByAgreementID(ctx context.Context, agreementID string) (*models.Subscription, error) {
	_ = ctx
	if agreementID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var sub models.Subscription
	err := s.db.Where("billing_agreement_id = ?", agreementID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) Apply(ctx context.Context, userID uint, eventID string, mutate MutateFunc) (bool, error) {
	_ = ctx
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First event for this user creates the record. A concurrent
			// create for the same user trips the unique index and rolls the
			// transaction back; the provider retries the delivery.
			sub = models.Subscription{UserID: userID}
		} else if err != nil {
			return err
		}

		if sub.LastEventID != "" && sub.LastEventID == eventID {
			return nil // exact duplicate, no write
		}

		notification, err := mutate(&sub)
		if err != nil {
			return err
		}
		if !models.IsValidSubscriptionStatus(sub.Status) {
			return fmt.Errorf("refusing to store unknown subscription status %q", sub.Status)
		}

		sub.LastEventID = eventID
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		if notification != nil {
			if err := notifications.AppendTx(tx, notification); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})

	return applied, err
}
