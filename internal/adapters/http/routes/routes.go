package routes

import (
	"loanapply/internal/adapters/http/handlers"
	"loanapply/internal/adapters/http/middleware"
	"loanapply/internal/adapters/persistence/repositories"
	"loanapply/internal/config"
	"loanapply/internal/core/services"
	"loanapply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *config.Database, cfg *config.Config, notifyService *services.NotificationService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	appRepo := repositories.NewApplicationRepository(db.DB, cfg.EmailUnique)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	appService := services.NewApplicationService(appRepo, notifyService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	appHandler := handlers.NewApplicationHandler(appService, cfg)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Application routes
	appRoutes := apiV1.Group("/applications")
	appRoutes.Use(middleware.AuthMiddleware(cfg))
	setupApplicationRoutes(appRoutes, appHandler)

	// Unmatched routes get the uniform error envelope
	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Can't find "+c.OriginalURL()+" on this server")
	})
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (stricter rate limit)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupApplicationRoutes configures loan application routes. The group
// is already behind AuthMiddleware; admin-only operations add a role
// check on top.
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler) {
	// Submitter routes
	router.Post("/", handler.Submit)
	router.Get("/get-login-forms", handler.GetLoginForms)
	router.Delete("/with-draw-application", handler.Withdraw)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Patch("/approve-reject-loan", middleware.AdminOnly(), handler.Decide)
}
