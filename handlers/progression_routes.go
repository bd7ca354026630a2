package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"xp-ledger/middleware"
	"xp-ledger/models"
	"xp-ledger/services"
)

// SetupProgressionRoutes registers profile, XP ledger, view, category,
// notification and rulebook routes.
func SetupProgressionRoutes(r fiber.Router, svc *services.ProgressionService) {
	r.Post("/profile", func(c *fiber.Ctx) error {
		var req struct {
			DisplayName string `json:"display_name"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badJSON(c, err)
			}
		}
		p, err := svc.RegisterProfile(c.UserContext(), middleware.UserID(c), req.DisplayName)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	// First contact registers the profile.
	r.Get("/profile", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if _, err := svc.EnsureProfile(c.UserContext(), userID); err != nil {
			return respondError(c, err)
		}
		view, err := svc.GetProfile(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(view)
	})

	r.Put("/profile/overrides", func(c *fiber.Ctx) error {
		var req struct {
			ManualLevel *int `json:"manual_level"`
			ManualXP    *int `json:"manual_xp"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		p, err := svc.SetManualOverrides(c.UserContext(), middleware.UserID(c), req.ManualLevel, req.ManualXP)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	r.Post("/profile/reset", func(c *fiber.Ctx) error {
		p, err := svc.ResetProfile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	r.Post("/xp", func(c *fiber.Ctx) error {
		var req struct {
			Amount     int           `json:"amount"`
			Type       models.XPType `json:"type"`
			CategoryID *string       `json:"category_id"`
			Source     string        `json:"source"`
			Date       string        `json:"date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		if req.Type == "" {
			req.Type = models.XPTypeManual
		}
		entry, err := svc.GrantXP(c.UserContext(), middleware.UserID(c), services.GrantInput{
			Amount:     req.Amount,
			Type:       models.XPType(strings.ToUpper(string(req.Type))),
			CategoryID: req.CategoryID,
			Source:     req.Source,
			Date:       req.Date,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	r.Get("/xp", func(c *fiber.Ctx) error {
		page, err := svc.ListXPLogs(c.UserContext(), middleware.UserID(c), services.HistoryQuery{
			Limit:      c.QueryInt("limit", services.DefaultPageSize),
			Offset:     c.QueryInt("offset", 0),
			Type:       models.XPType(strings.ToUpper(c.Query("type"))),
			CategoryID: c.Query("category_id"),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	})

	r.Patch("/xp/:id", func(c *fiber.Ctx) error {
		var req struct {
			Amount     *int           `json:"amount"`
			Type       *models.XPType `json:"type"`
			CategoryID *string        `json:"category_id"`
			Source     *string        `json:"source"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		entry, err := svc.AmendXP(c.UserContext(), middleware.UserID(c), c.Params("id"), services.AmendInput{
			Amount:     req.Amount,
			Type:       req.Type,
			CategoryID: req.CategoryID,
			Source:     req.Source,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entry)
	})

	r.Delete("/xp/:id", func(c *fiber.Ctx) error {
		if err := svc.RevokeXP(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/calendar", func(c *fiber.Ctx) error {
		entries, err := svc.Calendar(c.UserContext(), middleware.UserID(c), c.Query("from"), c.Query("to"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	})

	r.Get("/radar", func(c *fiber.Ctx) error {
		totals, err := svc.Radar(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(totals)
	})

	r.Post("/categories", func(c *fiber.Ctx) error {
		var req struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		cat, err := svc.CreateCategory(c.UserContext(), middleware.UserID(c), services.CategoryInput{Name: req.Name, Color: req.Color})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	r.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := svc.ListCategories(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cats)
	})

	r.Delete("/categories/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteCategory(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/notifications", func(c *fiber.Ctx) error {
		list, err := svc.ListNotifications(c.UserContext(), middleware.UserID(c), c.QueryBool("unread", false))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	r.Post("/notifications/read-all", func(c *fiber.Ctx) error {
		n, err := svc.MarkAllNotificationsRead(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"updated": n})
	})

	r.Post("/notifications/:id/read", func(c *fiber.Ctx) error {
		if err := svc.MarkNotificationRead(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/rulebook", func(c *fiber.Ctx) error {
		rb, err := svc.GetRulebook(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rb)
	})

	r.Put("/rulebook", func(c *fiber.Ctx) error {
		var req models.RulebookConfig
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		rb, err := svc.UpdateRulebook(c.UserContext(), middleware.UserID(c), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rb)
	})

	r.Post("/rulebook/reset", func(c *fiber.Ctx) error {
		rb, err := svc.ResetRulebook(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rb)
	})
}
