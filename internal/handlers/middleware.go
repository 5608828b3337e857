package handlers

import (
	"campus-exchange/internal/models"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the bearer token and loads the account into
// request locals for the handlers downstream.
func AuthMiddleware(users *services.UserService, jwtSecret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}

		userID, err := services.ValidateToken(token, jwtSecret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		user, err := users.FindUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user", user)
		return c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "Admin only")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
