package routes

import (
	"time"

	"github.com/driftline/driftline-backend/internal/config"
	"github.com/driftline/driftline-backend/internal/handlers"
	"github.com/driftline/driftline-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	dmHandler *handlers.DMHandler,
	userHandler *handlers.UserHandler,
	moderationHandler *handlers.ModerationHandler,
	uploadHandler *handlers.UploadHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP. DM clients poll, so the
	// ceiling is higher than a pure-CRUD API would use.
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	jwt := middleware.JWTProtected(cfg)

	// Profile
	api.Get("/me", jwt, userHandler.Me)
	api.Put("/me/privacy", jwt, userHandler.UpdatePrivacy)

	// Conversations
	api.Get("/conversations", jwt, dmHandler.ListConversations)
	api.Post("/conversations", jwt, dmHandler.CreateConversation)
	api.Delete("/conversations/:id", jwt, dmHandler.DeleteConversation)
	api.Get("/conversations/:id/messages", jwt, dmHandler.ListMessages)
	api.Post("/conversations/:id/read", jwt, dmHandler.MarkRead)

	// Messages
	api.Post("/messages", jwt, dmHandler.SendMessage)
	api.Delete("/messages/:id", jwt, dmHandler.DeleteMessage)
	api.Get("/messages/unread-count", jwt, dmHandler.TotalUnread)

	// Permission pre-flight
	api.Get("/users/:id/can-message", jwt, dmHandler.CanMessage)

	// Moderation
	api.Post("/blocks", jwt, moderationHandler.BlockUser)
	api.Delete("/blocks/:id", jwt, moderationHandler.UnblockUser)
	api.Post("/reports", jwt, moderationHandler.CreateReport)

	// Uploads
	api.Post("/uploads", jwt, uploadHandler.Presign)

	// Admin moderation panel
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)
}
