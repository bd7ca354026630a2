package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"xp-ledger/middleware"
	"xp-ledger/models"
	"xp-ledger/services"
)

func SetupGoalRoutes(r fiber.Router, svc *services.ProgressionService) {
	r.Post("/goals", func(c *fiber.Ctx) error {
		var req struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			TargetValue int        `json:"target_value"`
			XPReward    int        `json:"xp_reward"`
			CategoryID  *string    `json:"category_id"`
			Deadline    *time.Time `json:"deadline"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		g, err := svc.CreateGoal(c.UserContext(), middleware.UserID(c), services.GoalInput{
			Title:       req.Title,
			Description: req.Description,
			TargetValue: req.TargetValue,
			XPReward:    req.XPReward,
			CategoryID:  req.CategoryID,
			Deadline:    req.Deadline,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	r.Get("/goals", func(c *fiber.Ctx) error {
		status := models.GoalStatus(strings.ToUpper(c.Query("status")))
		list, err := svc.ListGoals(c.UserContext(), middleware.UserID(c), status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	r.Get("/goals/:id", func(c *fiber.Ctx) error {
		g, err := svc.GetGoal(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(g)
	})

	r.Delete("/goals/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteGoal(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/goals/:id/progress", func(c *fiber.Ctx) error {
		var req struct {
			Increment int `json:"increment"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		res, err := svc.UpdateGoalProgress(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Increment)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	r.Post("/goals/:id/fail", func(c *fiber.Ctx) error {
		g, err := svc.FailGoal(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(g)
	})
}
