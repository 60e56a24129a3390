package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"loanapply/internal/adapters/http/middleware"
	"loanapply/internal/adapters/http/routes"
	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/adapters/persistence/repositories"
	"loanapply/internal/config"
	"loanapply/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "loanapply/docs" // Swagger docs
)

// @title LoanApply API
// @version 1.0
// @description Loan application submission and administration API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@loanapply.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("⚠️ Error closing database: %v", err)
		}
	}()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db.DB); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default admin user
	if err := config.NewSeeder(db.DB).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Make sure the document upload directory exists
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	// Notification service; leaving SMTP_HOST empty disables email
	var sender services.EmailSender
	if cfg.SMTP.Host != "" {
		sender = services.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	notifyService := services.NewNotificationService(sender)
	if !notifyService.IsEnabled() {
		log.Println("⚠️ SMTP not configured, email notifications disabled")
	}

	// Background jobs: pending-application reminder and nightly
	// refresh-token cleanup
	appRepo := repositories.NewApplicationRepository(db.DB, cfg.EmailUnique)
	tokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	reminderService := services.NewReminderService(appRepo, tokenRepo, notifyService, cfg.Reminder.Schedule, cfg.Reminder.PendingAfter)
	if err := reminderService.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder job: %v", err)
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LoanApply API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Serve uploaded documents
	app.Static("/uploads", cfg.Upload.Dir)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, notifyService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
