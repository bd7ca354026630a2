package handlers

import (
	"github.com/gofiber/fiber/v2"

	"xp-ledger/middleware"
	"xp-ledger/models"
	"xp-ledger/services"
)

func SetupHabitRoutes(r fiber.Router, svc *services.ProgressionService) {
	r.Post("/habits", func(c *fiber.Ctx) error {
		var req struct {
			Name        string           `json:"name"`
			Description string           `json:"description"`
			Type        models.HabitType `json:"type"`
			XPReward    int              `json:"xp_reward"`
			CategoryID  *string          `json:"category_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		h, err := svc.CreateHabit(c.UserContext(), middleware.UserID(c), services.HabitInput{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
			XPReward:    req.XPReward,
			CategoryID:  req.CategoryID,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	})

	r.Get("/habits", func(c *fiber.Ctx) error {
		list, err := svc.ListHabits(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	r.Get("/habits/:id", func(c *fiber.Ctx) error {
		h, err := svc.GetHabit(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(h)
	})

	r.Patch("/habits/:id", func(c *fiber.Ctx) error {
		var req struct {
			Name        *string           `json:"name"`
			Description *string           `json:"description"`
			Type        *models.HabitType `json:"type"`
			XPReward    *int              `json:"xp_reward"`
			CategoryID  *string           `json:"category_id"`
			IsActive    *bool             `json:"is_active"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		h, err := svc.UpdateHabit(c.UserContext(), middleware.UserID(c), c.Params("id"), services.HabitPatch{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
			XPReward:    req.XPReward,
			CategoryID:  req.CategoryID,
			IsActive:    req.IsActive,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(h)
	})

	r.Delete("/habits/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteHabit(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/habits/:id/complete", func(c *fiber.Ctx) error {
		var req struct {
			Date        string   `json:"date"`
			HoursLogged *float64 `json:"hours_logged"`
			Amount      *int     `json:"amount"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badJSON(c, err)
			}
		}
		res, err := svc.CompleteHabit(c.UserContext(), middleware.UserID(c), c.Params("id"), services.CompleteInput{
			Date:        req.Date,
			HoursLogged: req.HoursLogged,
			Amount:      req.Amount,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	r.Delete("/habits/:id/completions/:date", func(c *fiber.Ctx) error {
		h, err := svc.UncompleteHabit(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Params("date"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(h)
	})
}
