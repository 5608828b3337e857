package handlers

import (
	"errors"
	"time"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
)

func SignupHandler(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password required"})
		}

		if _, err := users.Signup(c.Context(), req); err != nil {
			switch {
			case errors.Is(err, services.ErrDomainNotAllowed):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email domain not allowed"})
			case errors.Is(err, services.ErrEmailTaken):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Registration successful. Please login to get your token.",
		})
	}
}

func LoginHandler(users *services.UserService, jwtSecret []byte, tokenTTL time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		user, err := users.Login(c.Context(), req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid credentials"})
		}

		token, err := services.GenerateToken(user.ID, jwtSecret, tokenTTL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate token"})
		}
		return c.JSON(models.AuthResponse{AccessToken: token, TokenType: "bearer"})
	}
}

func MeHandler(c *fiber.Ctx) error {
	user := currentUser(c)
	return c.JSON(fiber.Map{
		"id":              user.ID,
		"email":           user.Email,
		"is_admin":        user.IsAdmin,
		"is_verified":     user.IsVerified,
		"university_name": user.University,
	})
}
