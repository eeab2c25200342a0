package constants

// Static route constants
const (
	HealthRoute        = "/health"
	PayPalWebhookRoute = "/webhooks/paypal"

	APIRoute   = "/api"
	APIv1Route = "/v1"

	SubscriptionRoute  = "/subscription"
	NotificationsRoute = "/notifications"
	CampaignsRoute     = "/email/campaigns"
)
