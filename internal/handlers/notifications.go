package handlers

import (
	"time"

	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

func ListNotificationsHandler(notifications *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		rows, err := notifications.List(c.Context(), user.ID, 50)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		out := make([]fiber.Map, 0, len(rows))
		for _, n := range rows {
			out = append(out, fiber.Map{
				"id":         n.ID,
				"type":       n.Type,
				"payload":    n.Payload,
				"is_read":    n.IsRead,
				"created_at": n.CreatedAt.Format(time.RFC3339),
			})
		}
		return c.JSON(out)
	}
}
