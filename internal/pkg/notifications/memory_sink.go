package notifications

import (
	"context"
	"sync"

	"github.com/fortifyapp/fortify/app/models"
)

// MemorySink is an in-memory Sink for tests and local development.
type MemorySink struct {
	mu     sync.RWMutex
	nextID uint
	byUser map[uint][]models.Notification // newest first
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{byUser: make(map[uint][]models.Notification)}
}

func (s *MemorySink) Append(ctx context.Context, n *models.Notification) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n.ID = s.nextID

	list := append([]models.Notification{*n}, s.byUser[n.UserID]...)
	if len(list) > MaxPerUser {
		list = list[:MaxPerUser]
	}
	s.byUser[n.UserID] = list
	return nil
}

func (s *MemorySink) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[userID]
	out := make([]models.Notification, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemorySink) MarkRead(ctx context.Context, userID uint, publicID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i := range list {
		if list[i].PublicID == publicID {
			list[i].IsRead = true
			break
		}
	}
	return nil
}

func (s *MemorySink) CountUnread(ctx context.Context, userID uint) (int64, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.byUser[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}
