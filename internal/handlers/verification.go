package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"
	"campus-exchange/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestVerificationHandler starts the OTP flow against a university email.
func RequestVerificationHandler(verifications *services.VerificationService, mailer *utils.Mailer, allowedDomains []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		var payload models.VerificationRequest
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		domain := ""
		if at := strings.LastIndex(payload.UniversityEmail, "@"); at >= 0 {
			domain = strings.ToLower(payload.UniversityEmail[at+1:])
		}
		allowed := false
		for _, d := range allowedDomains {
			if d == domain {
				allowed = true
				break
			}
		}
		if !allowed {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email domain not allowed"})
		}

		otp, ttl, err := verifications.Request(c.Context(), user.ID, payload.UniversityEmail, payload.StudentID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		body := fmt.Sprintf("Your verification code is: %s. It expires in %d minutes.",
			otp, int(ttl.Minutes()))
		if err := mailer.Send(payload.UniversityEmail, "Your OTP Code", body); err != nil {
			log.Error().Err(err).Msg("otp mail failed")
		}
		return c.JSON(fiber.Map{"message": "OTP sent to university email"})
	}
}

func VerifyOTPHandler(verifications *services.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		var payload models.OTPVerify
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		if err := verifications.VerifyOTP(c.Context(), user.ID, payload.OTPCode); err != nil {
			switch {
			case errors.Is(err, services.ErrNoVerification):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No verification request found"})
			case errors.Is(err, services.ErrOTPExpired):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "OTP expired"})
			case errors.Is(err, services.ErrOTPInvalid):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid OTP"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"message": "OTP verified. You can now upload your ID."})
	}
}

func UploadIDHandler(verifications *services.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
		}

		uploadDir := filepath.Join(utils.GetEnv("UPLOAD_DIR", "uploads"), "ids")
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create upload dir"})
		}
		name := uuid.New().String() + filepath.Ext(fileHeader.Filename)
		dest := filepath.Join(uploadDir, name)
		if err := c.SaveFile(fileHeader, dest); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save file"})
		}

		if err := verifications.AttachDocument(c.Context(), user.ID, dest); err != nil {
			_ = os.Remove(dest)
			if errors.Is(err, services.ErrNoVerification) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No verification request found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "ID uploaded. Waiting for admin review."})
	}
}

func VerificationStatusHandler(verifications *services.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		v, err := verifications.Status(c.Context(), user.ID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.JSON(fiber.Map{"status": "unverified", "id_document_url": nil})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": v.Status, "id_document_url": v.IDDocumentURL})
	}
}

func PendingVerificationsHandler(verifications *services.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := verifications.Pending(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		out := make([]fiber.Map, 0, len(items))
		for _, v := range items {
			out = append(out, fiber.Map{
				"user_id":         v.UserID,
				"email":           v.UniversityEmail,
				"student_id":      v.StudentID,
				"id_document_url": v.IDDocumentURL,
			})
		}
		return c.JSON(out)
	}
}

// ReviewVerificationHandler applies the admin decision; approving also
// flips the user's verified flag.
func ReviewVerificationHandler(verifications *services.VerificationService, users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := strconv.Atoi(c.Params("user_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		var body struct {
			Approve bool `json:"approve"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		if err := verifications.Review(c.Context(), userID, body.Approve); err != nil {
			if errors.Is(err, services.ErrNoVerification) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No verification request found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if body.Approve {
			if err := users.SetVerified(c.Context(), userID, true); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"message": "review recorded"})
	}
}
