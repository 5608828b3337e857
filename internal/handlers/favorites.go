package handlers

import (
	"errors"
	"strconv"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

func AddFavoriteHandler(favorites *services.FavoriteService, listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		listingID, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}

		if _, err := listings.FindListing(c.Context(), listingID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		created, err := favorites.Add(c.Context(), user.ID, listingID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if !created {
			return c.JSON(fiber.Map{"status": "already_favorited"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func RemoveFavoriteHandler(favorites *services.FavoriteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		listingID, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}

		if err := favorites.Remove(c.Context(), user.ID, listingID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not favorited"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func ListFavoritesHandler(favorites *services.FavoriteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		items, err := favorites.List(c.Context(), user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if items == nil {
			items = []models.Listing{}
		}
		return c.JSON(items)
	}
}
