package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fortifyapp/fortify/internal/pkg/database"
	"github.com/fortifyapp/fortify/internal/pkg/notifications"
)

type markReadRequest struct {
	UserID         uint   `json:"user_id" validate:"required"`
	NotificationID string `json:"notification_id" validate:"required"`
}

// HandleListNotifications returns the notification feed for a user, newest
// first, capped server-side at the retention limit.
func HandleListNotifications(c *fiber.Ctx) error {
	userID, ok := parseUserIDQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "userId is required"})
	}

	sink := notifications.NewSink(database.GetDB())
	list, err := sink.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load notifications"})
	}
	unread, err := sink.CountUnread(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load notifications"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notifications": list,
		"count":         len(list),
		"unread_count":  unread,
	})
}

// HandleMarkNotificationRead marks a single notification as read. Marking an
// already-read or unknown notification succeeds without effect, so client
// retries stay harmless.
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user_id and notification_id are required"})
	}

	sink := notifications.NewSink(database.GetDB())
	if err := sink.MarkRead(c.Context(), req.UserID, req.NotificationID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update notification"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
