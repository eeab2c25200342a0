package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// payPalWebhookEnvelope mirrors the PayPal webhook JSON body. Only the fields
// the engine consumes are declared.
type payPalWebhookEnvelope struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	CreateTime   string          `json:"create_time"`
	Resource     *payPalResource `json:"resource"`
}

type payPalResource struct {
	ID                 string            `json:"id"`
	State              string            `json:"state"`
	BillingAgreementID string            `json:"billing_agreement_id"`
	Amount             *payPalAmount     `json:"amount"`
	Payer              *payPalPayer      `json:"payer"`
	Subscriber         *payPalSubscriber `json:"subscriber"`
}

type payPalAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type payPalPayer struct {
	PayerInfo *payPalPayerInfo `json:"payer_info"`
}

type payPalPayerInfo struct {
	Email string `json:"email"`
}

type payPalSubscriber struct {
	EmailAddress string `json:"email_address"`
}

// payPalEventTypes maps provider event strings onto canonical tags. Strings
// outside this table normalize to EventUnrecognized, never to a parse error.
var payPalEventTypes = map[string]EventType{
	"BILLING.SUBSCRIPTION.CREATED":   EventSubscriptionCreated,
	"BILLING.SUBSCRIPTION.ACTIVATED": EventSubscriptionActivated,
	"BILLING.SUBSCRIPTION.CANCELLED": EventSubscriptionCancelled,
	"BILLING.SUBSCRIPTION.EXPIRED":   EventSubscriptionExpired,
	"BILLING.SUBSCRIPTION.SUSPENDED": EventSubscriptionSuspended,
	"PAYMENT.SALE.COMPLETED":         EventPaymentCompleted,
	"PAYMENT.SALE.DENIED":            EventPaymentDenied,
}

// ParsePayPalWebhookEvent normalizes a raw PayPal webhook body into a
// BillingEvent. Structural failures (bad JSON, missing resource object)
// return ErrMalformedPayload; an unfamiliar event type does not.
func ParsePayPalWebhookEvent(raw []byte) (*BillingEvent, error) {
	var envelope payPalWebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if envelope.Resource == nil {
		return nil, fmt.Errorf("%w: missing resource object", ErrMalformedPayload)
	}
	rawType := strings.TrimSpace(envelope.EventType)
	if rawType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedPayload)
	}

	eventType, ok := payPalEventTypes[rawType]
	if !ok {
		eventType = EventUnrecognized
	}

	occurredAt := time.Now().UTC()
	if envelope.CreateTime != "" {
		if t, err := time.Parse(time.RFC3339, envelope.CreateTime); err == nil {
			occurredAt = t.UTC()
		}
	}

	email := ""
	if envelope.Resource.Payer != nil && envelope.Resource.Payer.PayerInfo != nil {
		email = strings.TrimSpace(envelope.Resource.Payer.PayerInfo.Email)
	}
	if email == "" && envelope.Resource.Subscriber != nil {
		email = strings.TrimSpace(envelope.Resource.Subscriber.EmailAddress)
	}

	agreementID := strings.TrimSpace(envelope.Resource.BillingAgreementID)
	if agreementID == "" {
		agreementID = strings.TrimSpace(envelope.Resource.ID)
	}

	var amount *Amount
	if envelope.Resource.Amount != nil {
		amount = &Amount{
			Total:    strings.TrimSpace(envelope.Resource.Amount.Total),
			Currency: strings.TrimSpace(envelope.Resource.Amount.Currency),
		}
	}

	ev := &BillingEvent{
		ID:                 strings.TrimSpace(envelope.ID),
		Type:               eventType,
		RawType:            rawType,
		SubscriberEmail:    email,
		BillingAgreementID: agreementID,
		Amount:             amount,
		OccurredAt:         occurredAt,
	}
	if ev.ID == "" {
		ev.ID = eventIdentityHash(rawType, envelope.CreateTime, agreementID)
	}
	return ev, nil
}

// eventIdentityHash derives a stable event identity for deliveries that carry
// no provider event id.
func eventIdentityHash(eventType, createTime, agreementID string) string {
	sum := sha256.Sum256([]byte(eventType + "|" + createTime + "|" + agreementID))
	return "hash:" + hex.EncodeToString(sum[:])
}
