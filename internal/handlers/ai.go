package handlers

import (
	"math"

	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

// The /ai endpoints are heuristic stubs backed by plain queries: category
// averages for pricing, title similarity for duplicates, same-category
// picks for recommendations.

func PredictPriceHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Category string `json:"category"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		avg, ok, err := listings.AveragePrice(c.Context(), payload.Category)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if !ok {
			return c.JSON(fiber.Map{"suggested_price": 0.0, "basis": "no_category_data"})
		}
		return c.JSON(fiber.Map{
			"suggested_price": math.Round(avg*100) / 100,
			"basis":           "category_average",
		})
	}
}

func CheckDuplicateHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		titles, err := listings.SimilarTitles(c.Context(), payload.Title)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if titles == nil {
			titles = []string{}
		}
		return c.JSON(fiber.Map{
			"is_duplicate":  len(titles) > 0,
			"similar_items": titles,
		})
	}
}

func RecommendHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Category      string `json:"category"`
			CurrentItemID int    `json:"current_item_id"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		items, err := listings.Recommend(c.Context(), payload.Category, payload.CurrentItemID, 5)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		recs := make([]fiber.Map, 0, len(items))
		for _, item := range items {
			recs = append(recs, fiber.Map{"id": item.ID, "title": item.Title, "price": item.Price})
		}
		return c.JSON(fiber.Map{"recommendations": recs})
	}
}
