package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-exchange/internal/chat"
	"campus-exchange/internal/db"
	"campus-exchange/internal/handlers"
	"campus-exchange/internal/logger"
	"campus-exchange/internal/services"
	"campus-exchange/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load Env
	if err := utils.LoadEnv(); err != nil {
		log.Warn().Msg(".env file not found")
	}
	logger.Init(utils.GetEnv("LOG_LEVEL", "info"), utils.GetEnvBool("LOG_PRETTY", false))

	jwtSecret := []byte(utils.GetEnv("JWT_SECRET", "secret"))
	tokenTTL := time.Duration(utils.GetEnvInt("JWT_EXPIRE_MINUTES", 60)) * time.Minute
	otpTTL := time.Duration(utils.GetEnvInt("OTP_TTL_SECONDS", 600)) * time.Second
	allowedDomains := utils.GetEnvList("ALLOWED_EMAIL_DOMAINS", "uni.edu,college.edu,cuiatk.edu,cuiatk.edu.pk")

	// Init DB
	pool, err := db.Connect(context.Background(), db.ConnStringFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Services
	userService := services.NewUserService(pool, allowedDomains)
	listingService := services.NewListingService(pool)
	chatService := services.NewChatService(pool)
	favoriteService := services.NewFavoriteService(pool)
	reportService := services.NewReportService(pool)
	verificationService := services.NewVerificationService(pool, otpTTL)
	notificationService := services.NewNotificationService(pool)
	mailer := utils.NewMailerFromEnv()

	// The room directory lives for the whole process and is handed to the
	// chat handler explicitly.
	directory := chat.NewDirectory()

	if err := userService.EnsureAdmin(context.Background(),
		utils.GetEnv("ADMIN_EMAIL", ""), utils.GetEnv("ADMIN_PASSWORD", "")); err != nil {
		log.Error().Err(err).Msg("admin bootstrap failed")
	}

	// Fiber App
	app := fiber.New()

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Ensure upload dir exists and serve uploaded files
	uploadDir := utils.GetEnv("UPLOAD_DIR", "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("failed to create upload dir")
	}
	app.Static("/uploads", uploadDir)

	authRequired := handlers.AuthMiddleware(userService, jwtSecret)

	api := app.Group("/api/v1")

	// Auth
	api.Post("/auth/signup", handlers.SignupHandler(userService))
	api.Post("/auth/login", handlers.LoginHandler(userService, jwtSecret, tokenTTL))
	api.Get("/auth/me", authRequired, handlers.MeHandler)

	// Blocks
	api.Post("/users/:user_id/block", authRequired, handlers.BlockUserHandler(userService))
	api.Delete("/users/:user_id/block", authRequired, handlers.UnblockUserHandler(userService))

	// Listings
	api.Post("/listings", authRequired, handlers.CreateListingHandler(listingService))
	api.Get("/listings/:listing_id", handlers.GetListingHandler(listingService))
	api.Patch("/listings/:listing_id", authRequired, handlers.UpdateListingHandler(listingService))
	api.Delete("/listings/:listing_id", authRequired, handlers.DeleteListingHandler(listingService))
	api.Get("/search", handlers.SearchListingsHandler(listingService))

	// Favorites
	api.Get("/favorites", authRequired, handlers.ListFavoritesHandler(favoriteService))
	api.Post("/favorites/:listing_id", authRequired, handlers.AddFavoriteHandler(favoriteService, listingService))
	api.Delete("/favorites/:listing_id", authRequired, handlers.RemoveFavoriteHandler(favoriteService))

	// Reports
	api.Post("/reports", authRequired, handlers.CreateReportHandler(reportService, listingService))
	api.Get("/reports", authRequired, handlers.AdminOnly, handlers.ListReportsHandler(reportService))
	api.Post("/reports/:report_id/action", authRequired, handlers.AdminOnly, handlers.ReviewReportHandler(reportService))

	// Verification
	api.Post("/verification/request", authRequired,
		handlers.RequestVerificationHandler(verificationService, mailer, allowedDomains))
	api.Post("/verification/verify-otp", authRequired, handlers.VerifyOTPHandler(verificationService))
	api.Post("/verification/upload-id", authRequired, handlers.UploadIDHandler(verificationService))
	api.Get("/verification/status", authRequired, handlers.VerificationStatusHandler(verificationService))
	api.Get("/verification/pending", authRequired, handlers.AdminOnly,
		handlers.PendingVerificationsHandler(verificationService))
	api.Post("/verification/:user_id/review", authRequired, handlers.AdminOnly,
		handlers.ReviewVerificationHandler(verificationService, userService))

	// Notifications
	api.Get("/notifications", authRequired, handlers.ListNotificationsHandler(notificationService))

	// Admin
	api.Get("/admin/users", authRequired, handlers.AdminOnly, handlers.AdminListUsersHandler(userService))

	// AI stubs
	api.Post("/ai/predict-price", handlers.PredictPriceHandler(listingService))
	api.Post("/ai/check-duplicate", handlers.CheckDuplicateHandler(listingService))
	api.Post("/ai/recommend", handlers.RecommendHandler(listingService))

	// WebSocket chat. Token checking happens inside the socket handler so
	// rejects surface as a 1008 close, not an HTTP status.
	api.Use("/ws/chat/:listing_id/:peer_id", handlers.WSUpgradeMiddleware)
	api.Get("/ws/chat/:listing_id/:peer_id",
		handlers.ChatSocketHandler(directory, userService, listingService, chatService, jwtSecret))

	// Health Check
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the campus exchange API"})
	})

	// Start Server
	port := utils.GetEnv("PORT", "8000")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Panic().Err(err).Msg("server stopped")
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	log.Info().Msg("gracefully shutting down")
	_ = app.Shutdown()
	log.Info().Msg("server shutdown complete")
}
