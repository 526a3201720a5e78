package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/handlers"
	"marketplace-backend/internal/logging"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the document store
	db, err := database.NewClient(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to close database connection")
		}
	}()

	// Declare indexes, including the unique review constraint
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to ensure indexes")
		}
		cancel()
		logger.Info().Msg("indexes ensured")
	}

	// Services: the read paths for recommendations and search run fail-soft
	analyticsService := services.NewAnalyticsService(db)
	recommendationService := services.NewRecommendationService(db, db, db, logger, true)
	searchService := services.NewSearchService(db, db, logger, true)
	reviewService := services.NewReviewService(db, db, db)

	// Handlers
	responder := handlers.NewResponder(logger, cfg.IsProduction())
	authHandler := handlers.NewAuthHandler(db, cfg, responder)
	brandsHandler := handlers.NewBrandsHandler(db, responder)
	categoriesHandler := handlers.NewCategoriesHandler(db, responder)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, responder)
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationService, responder)
	searchHandler := handlers.NewSearchHandler(searchService, responder)
	reviewsHandler := handlers.NewReviewsHandler(reviewService, responder)
	serviceRequestsHandler := handlers.NewServiceRequestsHandler(db, responder)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler(db))

	api := router.Group("/api/v1")

	// Auth
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.AuthRequired(cfg), authHandler.Me)
	auth.PUT("/profile", middleware.AuthRequired(cfg), authHandler.UpdateProfile)

	// Brands
	brands := api.Group("/brands")
	brands.GET("", middleware.OptionalAuth(cfg), brandsHandler.List)
	brands.GET("/:id", brandsHandler.Get)
	brands.POST("", middleware.AuthRequired(cfg), middleware.RequireAdminOrApprovedShopVendor(), brandsHandler.Create)
	brands.PUT("/:id", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleAdmin), brandsHandler.Update)
	brands.DELETE("/:id", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleAdmin), brandsHandler.Delete)

	// Categories
	categories := api.Group("/categories")
	categories.GET("", middleware.OptionalAuth(cfg), categoriesHandler.List)
	categories.GET("/tree", categoriesHandler.Tree)
	categories.GET("/:id", categoriesHandler.Get)
	categories.POST("", middleware.AuthRequired(cfg), middleware.RequireAdminOrApprovedShopVendor(), categoriesHandler.Create)
	categories.PUT("/:id", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleAdmin), categoriesHandler.Update)
	categories.DELETE("/:id", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleAdmin), categoriesHandler.Delete)

	// Search
	search := api.Group("/search")
	search.GET("", searchHandler.Search)
	search.GET("/suggestions", searchHandler.Suggestions)
	search.GET("/filters", searchHandler.FilterOptions)
	search.GET("/popular", searchHandler.PopularSearches)

	// Recommendations
	recommendations := api.Group("/recommendations")
	recommendations.GET("/trending", recommendationsHandler.Trending)
	recommendations.GET("/top-rated", recommendationsHandler.TopRated)
	recommendations.GET("/homepage", middleware.OptionalAuth(cfg), recommendationsHandler.Homepage)
	recommendations.GET("/similar/:id", recommendationsHandler.Similar)
	recommendations.GET("/frequently-bought/:id", recommendationsHandler.FrequentlyBought)
	recommendations.GET("/personalized", middleware.AuthRequired(cfg), recommendationsHandler.Personalized)

	// Reviews
	api.GET("/products/:id/reviews", reviewsHandler.ListByProduct)
	reviews := api.Group("/reviews")
	reviews.POST("", middleware.AuthRequired(cfg), reviewsHandler.Create)
	reviews.GET("/mine", middleware.AuthRequired(cfg), reviewsHandler.Mine)
	reviews.PUT("/:id", middleware.AuthRequired(cfg), reviewsHandler.Update)
	reviews.DELETE("/:id", middleware.AuthRequired(cfg), reviewsHandler.Delete)
	reviews.POST("/:id/helpful", middleware.AuthRequired(cfg), reviewsHandler.MarkHelpful)
	reviews.POST("/:id/response", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleVendor), reviewsHandler.VendorResponse)

	// Service requests
	servicesGroup := api.Group("/services", middleware.AuthRequired(cfg))
	servicesGroup.POST("", serviceRequestsHandler.Create)
	servicesGroup.GET("/mine", serviceRequestsHandler.Mine)
	servicesGroup.GET("/:id", serviceRequestsHandler.Get)
	servicesGroup.PUT("/:id/status", middleware.RequireRoles(models.RoleAdmin), serviceRequestsHandler.UpdateStatus)

	// Analytics (admin only)
	analytics := api.Group("/analytics", middleware.AuthRequired(cfg), middleware.RequireRoles(models.RoleAdmin))
	analytics.GET("", analyticsHandler.GetAnalytics)
	analytics.GET("/orders", analyticsHandler.GetOrderReport)
	analytics.GET("/summary", analyticsHandler.GetSummary)

	// Start server
	logger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
