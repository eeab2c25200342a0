package controllers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fortifyapp/fortify/app/repository"
	"github.com/fortifyapp/fortify/internal/pkg/mail"
	"github.com/fortifyapp/fortify/internal/pkg/marketing"
	"github.com/fortifyapp/fortify/internal/pkg/metrics/counter"
)

type sendCampaignRequest struct {
	Subject string   `json:"subject" validate:"required,min=3,max=255"`
	Content string   `json:"content" validate:"required,min=10"`
	Tags    []string `json:"tags"`
}

func newMarketingService() *marketing.Service {
	repos := repository.GetGlobalRepositories()
	return marketing.NewService(repos.User, repos.Campaign, mail.NewSMTPBulkMailer())
}

// HandleSendCampaign sends a marketing email to the active user base and
// records a per-recipient send log.
func HandleSendCampaign(c *fiber.Ctx) error {
	var req sendCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "subject and content are required"})
	}

	svc := newMarketingService()
	result, err := svc.SendCampaign(c.Context(), marketing.CampaignInput{
		Subject: req.Subject,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		if errors.Is(err, marketing.ErrNoRecipients) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no_recipients", "message": "No active users match the campaign filters"})
		}
		log.Printf("[Campaign] send failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to send campaign"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":               true,
		"campaign_id":      result.Campaign.PublicID,
		"total_recipients": result.Campaign.TotalRecipients,
		"sent":             result.Campaign.TotalSent,
		"failed":           result.Campaign.TotalFailed,
		"status":           result.Campaign.Status,
	})
}

// HandleListCampaigns returns the campaign history together with audience
// stats and, when redis is reachable, the webhook outcome counters.
func HandleListCampaigns(c *fiber.Ctx) error {
	svc := newMarketingService()
	campaigns, stats, err := svc.ListCampaigns(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load campaigns"})
	}

	resp := fiber.Map{
		"campaigns": campaigns,
		"count":     len(campaigns),
		"stats":     stats,
	}
	if outcomes, eventTypes, err := counter.Snapshot(); err == nil {
		resp["webhook_counters"] = fiber.Map{"outcomes": outcomes, "event_types": eventTypes}
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HandleGetCampaign returns one campaign with its per-recipient send log.
func HandleGetCampaign(c *fiber.Ctx) error {
	publicID := c.Params("id")
	if publicID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Campaign id is required"})
	}

	svc := newMarketingService()
	campaign, logs, err := svc.GetCampaign(c.Context(), publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load campaign"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"campaign":  campaign,
		"send_logs": logs,
	})
}
