package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fortifyapp/fortify/app/controllers"
	"github.com/fortifyapp/fortify/internal/pkg/constants"
)

type HttpRouter struct {
}

// InstallRouter registers the unauthenticated surface: the health probe and
// the provider webhook. Webhook authenticity is checked inside the handler
// via signature verification, not via middleware.
func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post(constants.PayPalWebhookRoute, controllers.HandlePayPalWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
