package billing

import (
	"fmt"

	"github.com/fortifyapp/fortify/app/models"
)

// defaultPlanAmount is the Pro plan price used when a sale event carries no
// amount of its own.
const defaultPlanAmount = "39.90"

// Decision is the outcome of folding one event into the current status.
type Decision struct {
	// Applied is false when the event carries no state transition
	// (unrecognized event types).
	Applied bool

	NextStatus string

	// NotificationType and Message describe the single notification raised
	// by an applied transition.
	NotificationType string
	Message          string
}

// Decide maps (current status, event) to the next subscription status and
// the notification to raise. It is total and pure: no clock, no storage.
// The current status does not influence the target state; events apply in
// arrival order and the newest event wins.
func Decide(currentStatus string, ev *BillingEvent) Decision {
	_ = currentStatus

	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionActivated:
		return Decision{
			Applied:          true,
			NextStatus:       models.SubscriptionStatusTrial,
			NotificationType: models.NotificationTypeSubscriptionActivated,
			Message:          "Your Pro subscription is active! Enjoy 7 days free with full access.",
		}

	case EventPaymentCompleted:
		amount := defaultPlanAmount
		if ev.Amount != nil && ev.Amount.Total != "" {
			amount = ev.Amount.Total
		}
		return Decision{
			Applied:          true,
			NextStatus:       models.SubscriptionStatusActive,
			NotificationType: models.NotificationTypePaymentCompleted,
			Message:          fmt.Sprintf("Payment of $%s processed successfully. Your Pro subscription has been renewed.", amount),
		}

	case EventSubscriptionCancelled:
		return Decision{
			Applied:          true,
			NextStatus:       models.SubscriptionStatusCancelled,
			NotificationType: models.NotificationTypeSubscriptionCancelled,
			Message:          "Your Pro subscription has been cancelled. You can renew at any time.",
		}

	case EventSubscriptionExpired:
		// Expiry reads as a cancellation to the user.
		return Decision{
			Applied:          true,
			NextStatus:       models.SubscriptionStatusExpired,
			NotificationType: models.NotificationTypeSubscriptionCancelled,
			Message:          "Your Pro subscription has been cancelled. You can renew at any time.",
		}

	case EventPaymentDenied, EventSubscriptionSuspended:
		return Decision{
			Applied:          true,
			NextStatus:       models.SubscriptionStatusSuspended,
			NotificationType: models.NotificationTypePaymentFailed,
			Message:          "Your payment was declined. Please check your payment details and try again.",
		}

	default:
		return Decision{Applied: false}
	}
}
