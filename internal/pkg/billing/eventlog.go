package billing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fortifyapp/fortify/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// EventLog persists webhook deliveries idempotently. Record returns
// created=false when the same provider event id was seen before, which is
// the first line of duplicate suppression.
type EventLog interface {
	Record(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingErr error) error
}

type gormEventLog struct {
	db *gorm.DB
}

// NewEventLog creates a webhook event log backed by GORM.
func NewEventLog(db *gorm.DB) EventLog {
	return &gormEventLog{db: db}
}

func (l *gormEventLog) Record(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	event := &models.BillingWebhookEvent{
		Provider:        strings.ToLower(strings.TrimSpace(in.Provider)),
		ProviderEventID: strings.TrimSpace(in.ProviderEventID),
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}

	tx := l.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := l.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (l *gormEventLog) MarkProcessed(ctx context.Context, id uint, processingErr error) error {
	_ = ctx
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	now := time.Now()
	return l.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": errMsg,
	}).Error
}

// MemoryEventLog is an in-memory EventLog for tests.
type MemoryEventLog struct {
	mu     sync.Mutex
	nextID uint
	byKey  map[string]*models.BillingWebhookEvent
}

// NewMemoryEventLog creates an empty in-memory event log.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{byKey: make(map[string]*models.BillingWebhookEvent)}
}

func (l *MemoryEventLog) Record(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()

	key := strings.ToLower(in.Provider) + "|" + in.ProviderEventID
	if stored, ok := l.byKey[key]; ok {
		out := *stored
		return false, &out, nil
	}

	l.nextID++
	stored := &models.BillingWebhookEvent{
		ID:              l.nextID,
		Provider:        strings.ToLower(in.Provider),
		ProviderEventID: in.ProviderEventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
		CreatedAt:       time.Now(),
	}
	l.byKey[key] = stored
	out := *stored
	return true, &out, nil
}

func (l *MemoryEventLog) MarkProcessed(ctx context.Context, id uint, processingErr error) error {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, stored := range l.byKey {
		if stored.ID == id {
			now := time.Now()
			stored.ProcessedAt = &now
			stored.ProcessingError = ""
			if processingErr != nil {
				stored.ProcessingError = processingErr.Error()
			}
			return nil
		}
	}
	return nil
}
