package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"xp-ledger/logger"
	"xp-ledger/middleware"
	"xp-ledger/services"
)

type ServerConfig struct {
	ServiceToken   string
	AllowedOrigins []string
}

// NewServer builds the fiber app: health check, gateway auth, CORS and every /s route.
func NewServer(svc *services.ProgressionService, log *logger.Logger, cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "xp-ledger",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Only gateway requests get past this point.
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken, log))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
		MaxAge:           86400,
	}))

	secured := app.Group("/s", middleware.UserContextMiddleware(log))
	SetupProgressionRoutes(secured, svc)
	SetupHabitRoutes(secured, svc)
	SetupGoalRoutes(secured, svc)
	SetupShopRoutes(secured, svc)
	SetupAdminRoutes(secured.Group("/admin", middleware.RequireRole("admin")), svc)

	return app
}

func containsWildcard(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": strings.ToLower(strings.ReplaceAll(fe.Message, " ", "_")),
			})
		}
		log.Error("unhandled request error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}
}

// respondError maps service errors onto the status codes callers branch on.
func respondError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		return err
	}
	status := fiber.StatusInternalServerError
	switch se.Kind {
	case services.KindValidation:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindConflict:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"error": se.Code,
		"cause": se.Message,
	})
}

func badJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid_json",
		"cause": err.Error(),
	})
}
