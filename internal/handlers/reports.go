package handlers

import (
	"errors"
	"strconv"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

func CreateReportHandler(reports *services.ReportService, listings *services.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		var payload models.ReportCreate
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		if payload.ReportedListingID == nil && payload.ReportedUserID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Must report a listing or user."})
		}
		if payload.ReportedListingID != nil {
			if _, err := listings.FindListing(c.Context(), *payload.ReportedListingID); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Reported listing does not exist."})
				}
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}

		report := models.Report{
			ReporterID:        user.ID,
			ReportedListingID: payload.ReportedListingID,
			ReportedUserID:    payload.ReportedUserID,
			Reason:            payload.Reason,
		}
		if err := reports.Create(c.Context(), &report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(report)
	}
}

func ListReportsHandler(reports *services.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 50)
		if skip < 0 {
			skip = 0
		}
		if limit > 200 {
			limit = 200
		}

		items, err := reports.List(c.Context(), skip, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if items == nil {
			items = []models.Report{}
		}
		return c.JSON(items)
	}
}

func ReviewReportHandler(reports *services.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("report_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
		}

		var body struct {
			Status   string  `json:"status"`
			AuditLog *string `json:"audit_log"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		switch body.Status {
		case models.ReportReviewed, models.ReportDismissed:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
		}

		report, err := reports.Review(c.Context(), id, body.Status, body.AuditLog)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(report)
	}
}
