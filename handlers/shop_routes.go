package handlers

import (
	"github.com/gofiber/fiber/v2"

	"xp-ledger/middleware"
	"xp-ledger/services"
)

func SetupShopRoutes(r fiber.Router, svc *services.ProgressionService) {
	shop := r.Group("/shop")

	shop.Post("/items", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Emoji       string `json:"emoji"`
			Cost        int    `json:"cost"`
			Refundable  bool   `json:"refundable"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		item, err := svc.CreateShopItem(c.UserContext(), middleware.UserID(c), services.ShopItemInput{
			Name:        req.Name,
			Description: req.Description,
			Emoji:       req.Emoji,
			Cost:        req.Cost,
			Refundable:  req.Refundable,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	shop.Get("/items", func(c *fiber.Ctx) error {
		items, err := svc.ListShopItems(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})

	shop.Delete("/items/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteShopItem(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	shop.Post("/items/:id/purchase", func(c *fiber.Ctx) error {
		res, err := svc.PurchaseItem(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	shop.Post("/items/:id/refund", func(c *fiber.Ctx) error {
		res, err := svc.RefundItem(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	shop.Get("/redemptions", func(c *fiber.Ctx) error {
		page, err := svc.ListRedemptions(c.UserContext(), middleware.UserID(c),
			c.QueryInt("limit", services.DefaultPageSize), c.QueryInt("offset", 0))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	})
}
