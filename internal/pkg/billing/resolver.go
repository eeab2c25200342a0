package billing

import (
	"context"
	"errors"

	"github.com/fortifyapp/fortify/app/repository"
	"gorm.io/gorm"
)

// SubscriberResolver maps a billing event to an internal user id. A miss is
// ErrUnknownSubscriber, which callers treat as accept-and-drop.
type SubscriberResolver interface {
	Resolve(ctx context.Context, ev *BillingEvent) (uint, error)
}

type storeResolver struct {
	users repository.UserRepository
	store SubscriptionStore
}

// NewResolver resolves subscribers by stored email first, then by a
// previously seen billing agreement id. The agreement-id path matters
// because some provider events omit the payer email.
func NewResolver(users repository.UserRepository, store SubscriptionStore) SubscriberResolver {
	return &storeResolver{users: users, store: store}
}

func (r *storeResolver) Resolve(ctx context.Context, ev *BillingEvent) (uint, error) {
	if ev.SubscriberEmail != "" {
		user, err := r.users.GetByEmail(ev.SubscriberEmail)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	if ev.BillingAgreementID != "" {
		sub, err := r.store.FindByAgreementID(ctx, ev.BillingAgreementID)
		if err == nil {
			return sub.UserID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	return 0, ErrUnknownSubscriber
}
