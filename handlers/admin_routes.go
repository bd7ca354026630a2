package handlers

import (
	"github.com/gofiber/fiber/v2"

	"xp-ledger/services"
)

// SetupAdminRoutes exposes the consistency audit. The router must already require the admin role.
func SetupAdminRoutes(r fiber.Router, svc *services.ProgressionService) {
	r.Get("/audit", func(c *fiber.Ctx) error {
		failing, err := svc.VerifyAll(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"ok":      len(failing) == 0,
			"failing": failing,
		})
	})

	r.Get("/users/:id/audit", func(c *fiber.Ctx) error {
		report, err := svc.VerifyUser(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	})
}
