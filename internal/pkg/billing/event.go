package billing

import "time"

// BillingProviderPayPal is the provider tag stored on webhook event rows.
const BillingProviderPayPal = "paypal"

// EventType is the canonical tag of a provider billing event.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionActivated EventType = "subscription_activated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventSubscriptionExpired   EventType = "subscription_expired"
	EventSubscriptionSuspended EventType = "subscription_suspended"
	EventPaymentCompleted      EventType = "payment_completed"
	EventPaymentDenied         EventType = "payment_denied"
	EventUnrecognized          EventType = "unrecognized"
)

// Amount is the optional payment amount carried by sale events. The total is
// kept as the provider's decimal string.
type Amount struct {
	Total    string
	Currency string
}

// BillingEvent is the normalized, immutable form of one inbound webhook
// delivery. It only lives for the duration of processing; the applied state
// survives on the subscription record.
type BillingEvent struct {
	// ID is the stable event identity used for duplicate suppression: the
	// provider event id when present, otherwise a content hash.
	ID string

	Type EventType

	// RawType retains the original provider event string for diagnostics
	// when Type is EventUnrecognized.
	RawType string

	SubscriberEmail    string
	BillingAgreementID string
	Amount             *Amount
	OccurredAt         time.Time
}
