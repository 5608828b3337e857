package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"
	"campus-exchange/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateListingHandler accepts a multipart form: title, description,
// category, price, plus any number of files under "images". Only verified
// users may sell.
func CreateListingHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if !user.IsVerified {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User must be verified to create a listing."})
		}

		price, err := strconv.ParseFloat(c.FormValue("price"), 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
		}
		listing := models.Listing{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Price:       price,
			OwnerID:     user.ID,
		}
		if listing.Title == "" || listing.Category == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and category required"})
		}

		uploadDir := filepath.Join(utils.GetEnv("UPLOAD_DIR", "uploads"), "listings")
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for _, file := range form.File["images"] {
				if err := os.MkdirAll(uploadDir, 0o755); err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create upload dir"})
				}
				name := uuid.New().String() + filepath.Ext(file.Filename)
				if err := c.SaveFile(file, filepath.Join(uploadDir, name)); err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save image"})
				}
				listing.Images = append(listing.Images, name)
			}
		}

		if err := listings.Create(c.Context(), &listing); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(listing)
	}
}

func GetListingHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}
		listing, err := listings.FindListing(c.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(listing)
	}
}

func UpdateListingHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if !user.IsVerified {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User must be verified to update a listing."})
		}
		id, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}

		existing, err := listings.FindListing(c.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if existing.OwnerID != user.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not owner of this listing."})
		}

		var upd models.ListingUpdate
		if err := c.BodyParser(&upd); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		updated, err := listings.Update(c.Context(), id, upd)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(updated)
	}
}

func DeleteListingHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if !user.IsVerified {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User must be verified to delete a listing."})
		}
		id, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}

		existing, err := listings.FindListing(c.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if existing.OwnerID != user.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not owner of this listing."})
		}

		if err := listings.Delete(c.Context(), id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchListingsHandler filters by q, category, min_price and max_price.
func SearchListingsHandler(listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := models.SearchFilter{
			Query:    c.Query("q"),
			Category: c.Query("category"),
		}
		if v := c.Query("min_price"); v != "" {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid min_price"})
			}
			filter.MinPrice = &p
		}
		if v := c.Query("max_price"); v != "" {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid max_price"})
			}
			filter.MaxPrice = &p
		}

		results, err := listings.Search(c.Context(), filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if results == nil {
			results = []models.Listing{}
		}
		return c.JSON(results)
	}
}
