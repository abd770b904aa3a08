// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/handlers"
	"github.com/akunbay/akunbay-backend/internal/middleware"
	"github.com/akunbay/akunbay-backend/internal/payment"
	"github.com/akunbay/akunbay-backend/internal/services"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

func paymentProvider(cfg *config.Config) payment.Provider {
	if cfg.Payment.Provider == "stripe" {
		return payment.NewStripeClient(cfg.Payment)
	}
	return payment.NewInvoiceClient(cfg.Payment)
}

// Initialize wires services, handlers, and routes. The scheduler is built
// here too so it shares the same service instances as the request path; the
// caller decides whether to start it.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.SchedulerService) {
	// Initialize services
	notificationService := services.NewNotificationService(db)
	storageService, _ := services.NewStorageService(cfg)
	feeCalculator := services.NewFeeCalculator(cfg.Escrow)
	provider := paymentProvider(cfg)

	authService := services.NewAuthService(db, cfg)
	listingService := services.NewListingService(db, cfg)
	purchaseService := services.NewPurchaseService(db, cfg, feeCalculator, provider, notificationService)
	webhookService := services.NewWebhookService(db, cfg, notificationService)
	credentialService := services.NewCredentialService(db, cfg)
	disputeService := services.NewDisputeService(db, cfg, notificationService)
	schedulerService := services.NewSchedulerService(db, cfg, disputeService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService, storageService)
	transactionHandler := handlers.NewTransactionHandler(purchaseService, credentialService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	disputeHandler := handlers.NewDisputeHandler(disputeService, storageService)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Period))
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Replays cached responses for repeated Idempotency-Key headers on any
	// mutating call. Runs after AuthRequired so the replay scope is per user.
	idempotency := middleware.Idempotency(db, cfg.Escrow.IdempotencyTTL)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", middleware.OptionalAuth(), listingHandler.GetListings)
			listings.GET("/:id", middleware.OptionalAuth(), listingHandler.GetListing)

			protected := listings.Group("")
			protected.Use(middleware.AuthRequired(), idempotency)
			{
				protected.POST("", listingHandler.CreateListing)
				protected.DELETE("/:id", listingHandler.DeleteListing)
				protected.POST("/upload-images", listingHandler.UploadImages)
			}
		}

		// Transaction routes
		transactions := v1.Group("/transactions")
		transactions.Use(middleware.AuthRequired(), idempotency)
		{
			transactions.POST("", transactionHandler.CreatePurchase)
			transactions.GET("", transactionHandler.GetTransactionHistory)
			transactions.GET("/:id", transactionHandler.GetTransaction)
			transactions.GET("/:id/credentials", transactionHandler.GetCredentials)
		}

		// Dispute routes
		disputes := v1.Group("/disputes")
		disputes.Use(middleware.AuthRequired(), idempotency)
		{
			disputes.POST("", disputeHandler.CreateDispute)
			disputes.GET("", disputeHandler.GetDisputes)
			disputes.GET("/:id", disputeHandler.GetDispute)
			disputes.POST("/:id/messages", disputeHandler.AddMessage)
			disputes.POST("/upload-evidence", disputeHandler.UploadEvidence)
			disputes.PUT("/:id/resolve", middleware.AdminRequired(), disputeHandler.ResolveDispute)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired(), idempotency)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Payment gateway callbacks, authenticated by signature instead of JWT
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/payment", webhookHandler.HandlePaymentWebhook)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, schedulerService
}
