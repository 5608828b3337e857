package handlers

import (
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

func AdminListUsersHandler(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := users.ListUsers(c.Context(), 100)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch users"})
		}

		out := make([]fiber.Map, 0, len(rows))
		for _, u := range rows {
			out = append(out, fiber.Map{
				"id":          u.ID,
				"email":       u.Email,
				"is_admin":    u.IsAdmin,
				"is_verified": u.IsVerified,
			})
		}
		return c.JSON(out)
	}
}
