package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/internal/pkg/notifications"
	"gorm.io/gorm"
)

// MemoryStore is an in-memory SubscriptionStore for tests and local
// development. Per-user mutexes give the same single-writer-per-key
// guarantee as the database row lock.
type MemoryStore struct {
	sink *notifications.MemorySink

	mu     sync.Mutex
	locks  map[uint]*sync.Mutex
	nextID uint
	subs   map[uint]*models.Subscription
}

// NewMemoryStore creates an empty in-memory store appending notifications to
// the given sink.
func NewMemoryStore(sink *notifications.MemorySink) *MemoryStore {
	return &MemoryStore{
		sink:  sink,
		locks: make(map[uint]*sync.Mutex),
		subs:  make(map[uint]*models.Subscription),
	}
}

func (s *MemoryStore) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *MemoryStore) Get(ctx context.Context, userID uint) (*models.Subscription, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *sub
	return &out, nil
}

func (s *MemoryStore) FindByAgreementID(ctx context.Context, agreementID string) (*models.Subscription, error) {
	_ = ctx
	if agreementID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.BillingAgreementID == agreementID {
			out := *sub
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *MemoryStore) Apply(ctx context.Context, userID uint, eventID string, mutate MutateFunc) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	sub, ok := s.subs[userID]
	var working models.Subscription
	if ok {
		working = *sub
	} else {
		s.nextID++
		working = models.Subscription{ID: s.nextID, UserID: userID, CreatedAt: time.Now()}
	}
	s.mu.Unlock()

	if working.LastEventID != "" && working.LastEventID == eventID {
		return false, nil
	}

	notification, err := mutate(&working)
	if err != nil {
		return false, err
	}
	if !models.IsValidSubscriptionStatus(working.Status) {
		return false, fmt.Errorf("refusing to store unknown subscription status %q", working.Status)
	}

	working.LastEventID = eventID
	working.UpdatedAt = time.Now()

	s.mu.Lock()
	s.subs[userID] = &working
	s.mu.Unlock()

	if notification != nil && s.sink != nil {
		if err := s.sink.Append(ctx, notification); err != nil {
			return false, err
		}
	}
	return true, nil
}
