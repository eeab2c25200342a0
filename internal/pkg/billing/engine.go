package billing

import (
	"context"
	"errors"
	"log"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/app/repository"
	"github.com/fortifyapp/fortify/internal/pkg/entitlements"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome classifies how one webhook delivery was handled. Every outcome is
// a success from the provider's perspective; rejections surface as errors.
type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeUnrecognized      Outcome = "unrecognized"
	OutcomeUnknownSubscriber Outcome = "unknown_subscriber"
)

// Result reports the handling of one delivery.
type Result struct {
	Outcome   Outcome
	EventType EventType
	RawType   string
	UserID    uint
	NewStatus string
}

// Engine is the subscription lifecycle state machine. It folds normalized
// provider events into subscription records, exactly once per event
// identity, and raises the matching user notification in the same unit.
type Engine struct {
	verifier SignatureVerifier
	events   EventLog
	resolver SubscriberResolver
	store    SubscriptionStore
}

// NewEngine creates an engine from injected collaborators.
func NewEngine(verifier SignatureVerifier, events EventLog, resolver SubscriberResolver, store SubscriptionStore) *Engine {
	return &Engine{verifier: verifier, events: events, resolver: resolver, store: store}
}

// NewEngineFromDB wires the production engine: GORM-backed store and event
// log, repository-backed resolver, and the env-configured verifier.
func NewEngineFromDB(db *gorm.DB) *Engine {
	store := NewStore(db)
	return NewEngine(
		NewVerifierFromEnv(),
		NewEventLog(db),
		NewResolver(repository.NewUserRepository(db), store),
		store,
	)
}

// Process handles one raw webhook delivery end to end: verify, normalize,
// deduplicate, resolve, transition, notify. It either commits the full state
// change or leaves everything untouched.
func (e *Engine) Process(ctx context.Context, rawBody []byte, headers map[string]string) (*Result, error) {
	if !e.verifier.Verify(rawBody, headers) {
		return nil, ErrInvalidSignature
	}

	ev, err := ParsePayPalWebhookEvent(rawBody)
	if err != nil {
		return nil, err
	}

	created, stored, err := e.events.Record(ctx, WebhookEventInput{
		Provider:        BillingProviderPayPal,
		ProviderEventID: ev.ID,
		EventType:       ev.RawType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return nil, err
	}
	if !created && eventCommitted(stored) {
		return &Result{Outcome: OutcomeDuplicate, EventType: ev.Type, RawType: ev.RawType}, nil
	}
	// A known event id whose previous attempt never committed (crash, or a
	// failed apply answered with 500) is a provider redelivery, not a
	// duplicate: process it again. The store's last-event check keeps a
	// racing second application out.

	if ev.Type == EventUnrecognized {
		log.Printf("billing: ignoring unrecognized paypal event %q (event id %s)", ev.RawType, ev.ID)
		_ = e.events.MarkProcessed(ctx, stored.ID, nil)
		return &Result{Outcome: OutcomeUnrecognized, EventType: ev.Type, RawType: ev.RawType}, nil
	}

	userID, err := e.resolver.Resolve(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrUnknownSubscriber) {
			log.Printf("billing: no subscriber for paypal event %s (email %q, agreement %q)", ev.ID, ev.SubscriberEmail, ev.BillingAgreementID)
			_ = e.events.MarkProcessed(ctx, stored.ID, err)
			return &Result{Outcome: OutcomeUnknownSubscriber, EventType: ev.Type, RawType: ev.RawType}, nil
		}
		_ = e.events.MarkProcessed(ctx, stored.ID, err)
		return nil, err
	}

	var newStatus string
	applied, err := e.store.Apply(ctx, userID, ev.ID, func(sub *models.Subscription) (*models.Notification, error) {
		decision := Decide(sub.Status, ev)

		sub.Status = decision.NextStatus
		newStatus = decision.NextStatus

		// The trial window is set exactly once, on the first entry into
		// trial; later created/activated events must not move it.
		if decision.NextStatus == models.SubscriptionStatusTrial && sub.TrialEndDate == nil {
			trialEnd := ev.OccurredAt.Add(entitlements.TrialDuration())
			sub.TrialEndDate = &trialEnd
		}
		if ev.BillingAgreementID != "" {
			sub.BillingAgreementID = ev.BillingAgreementID
		}

		return &models.Notification{
			PublicID: uuid.NewString(),
			UserID:   userID,
			Type:     decision.NotificationType,
			Message:  decision.Message,
		}, nil
	})
	if err != nil {
		_ = e.events.MarkProcessed(ctx, stored.ID, err)
		return nil, err
	}

	_ = e.events.MarkProcessed(ctx, stored.ID, nil)
	if !applied {
		return &Result{Outcome: OutcomeDuplicate, EventType: ev.Type, RawType: ev.RawType, UserID: userID}, nil
	}

	return &Result{Outcome: OutcomeApplied, EventType: ev.Type, RawType: ev.RawType, UserID: userID, NewStatus: newStatus}, nil
}

// eventCommitted reports whether a stored delivery finished processing
// without an error. Only committed deliveries are suppressed as duplicates;
// anything else is retried end to end.
func eventCommitted(stored *models.BillingWebhookEvent) bool {
	return stored.ProcessedAt != nil && stored.ProcessingError == ""
}
