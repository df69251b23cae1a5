package main

import (
	"fmt"
	"net/http"
	"os"

	"spendtrack/internal/config"
	"spendtrack/internal/database"
	"spendtrack/internal/handlers"
	"spendtrack/internal/logger"
	"spendtrack/internal/mailer"
	"spendtrack/internal/middleware"
	"spendtrack/internal/oauth"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "spendtrack/internal/docs" // Import swagger docs
)

// @title           Spendtrack API
// @version         1.0
// @description     Spendtrack is a personal expense tracker: accounts with local or Google sign-in, OTP password reset, and category-based expense management.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Mail dispatcher: SMTP in real deployments, log-only in development
	var dispatcher mailer.Dispatcher
	switch appConfig.MailProvider {
	case "smtp":
		dispatcher = mailer.NewSMTPDispatcher(
			appConfig.SMTPHost,
			appConfig.SMTPPort,
			appConfig.SMTPUsername,
			appConfig.SMTPPassword,
			appConfig.MailFrom,
			appConfig.MailFromName,
		)
	default:
		dispatcher = mailer.NewLogDispatcher()
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	resetService := services.NewPasswordResetService(db, dispatcher)
	expenseService := services.NewExpenseService(db)

	googleProvider := oauth.NewGoogleProvider(
		appConfig.GoogleClientID,
		appConfig.GoogleClientSecret,
		appConfig.GoogleCallbackURL,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	resetHandler := handlers.NewPasswordResetHandler(resetService, appConfig.OTPDebugEcho)
	oauthHandler := handlers.NewOAuthHandler(googleProvider, userService, appConfig.ClientURL)
	expenseHandler := handlers.NewExpenseHandler(expenseService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", appConfig.AllowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/google", oauthHandler.GoogleLogin)
	auth.GET("/google/callback", oauthHandler.GoogleCallback)
	auth.POST("/forgot-password", resetHandler.ForgotPassword)
	auth.POST("/verify-otp", resetHandler.VerifyOTP)
	auth.PUT("/reset-password", resetHandler.ResetPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(userService))

	// User profile
	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/summary", expenseHandler.GetExpenseSummary)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	log.Infof("Starting Spendtrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
