package handlers

import (
	"errors"
	"strconv"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BlockUserHandler records a directed block from the authenticated user
// towards :user_id. Once blocked, neither side can open a chat with the
// other. Blocking twice is fine.
func BlockUserHandler(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blocker := currentUser(c)
		targetID, err := strconv.Atoi(c.Params("user_id"))
		if err != nil || targetID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}
		if targetID == blocker.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot block yourself"})
		}

		if _, err := users.FindUser(c.Context(), targetID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		if err := users.Block(c.Context(), targetID, blocker.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "blocked"})
	}
}

func UnblockUserHandler(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blocker := currentUser(c)
		targetID, err := strconv.Atoi(c.Params("user_id"))
		if err != nil || targetID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		if err := users.Unblock(c.Context(), targetID, blocker.ID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not blocked"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "unblocked"})
	}
}
