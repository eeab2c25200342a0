package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/fortifyapp/fortify/app/controllers"
	"github.com/fortifyapp/fortify/internal/pkg/cache"
	"github.com/fortifyapp/fortify/internal/pkg/constants"
	"github.com/fortifyapp/fortify/internal/pkg/env"
	"github.com/fortifyapp/fortify/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Fortify API",
		})
	})

	v1 := api.Group(constants.APIv1Route)
	v1.Get(constants.SubscriptionRoute, controllers.HandleGetSubscription)
	v1.Get(constants.NotificationsRoute, controllers.HandleListNotifications)
	v1.Patch(constants.NotificationsRoute, controllers.HandleMarkNotificationRead)

	// Campaign endpoints are operator-facing and require an admin API key.
	campaigns := v1.Group(constants.CampaignsRoute, middleware.APIKeyAuthMiddleware(), middleware.RequireAdmin())
	campaigns.Post("/", controllers.HandleSendCampaign)
	campaigns.Get("/", controllers.HandleListCampaigns)
	campaigns.Get("/:id", controllers.HandleGetCampaign)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Uses database 1 to stay clear of the cache keyspace on 0.
func newLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
