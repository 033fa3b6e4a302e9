package main

import (
	"fmt"
	"net/http"
	"os"

	"roomshare/backend/internal/auth"
	"roomshare/backend/internal/config"
	"roomshare/backend/internal/database"
	"roomshare/backend/internal/handler"
	"roomshare/backend/internal/hub"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/repository"
	"roomshare/backend/internal/storage"
	"roomshare/backend/pkg/logger"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "roomshare/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           RoomShare API
// @version         1.0
// @description     Room rental and flatmate matching API.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	store := storage.New(cfg.UploadDir, log)

	notifier := hub.New()

	users := repository.NewUserRepository(db, store, log)
	listings := repository.NewListingRepository(db, store, log)
	applications := repository.NewApplicationRepository(db)
	messages := repository.NewMessageRepository(db)

	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, log)
	listingHandler := handler.NewListingHandler(listings, users, log)
	applicationHandler := handler.NewApplicationHandler(applications, log)
	messageHandler := handler.NewMessageHandler(messages, notifier, log)
	userHandler := handler.NewUserHandler(users, log)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded images are served straight from disk
	router.Static("/uploads", cfg.UploadDir)

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	authRequired := auth.Middleware(cfg.JWTSecret)
	authOptional := auth.OptionalMiddleware(cfg.JWTSecret)
	landlordOnly := auth.RequireRole(models.RoleLandlord)
	tenantOnly := auth.RequireRole(models.RoleTenant)

	api := router.Group("/api")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Listing routes (reads are public, writes landlord-only)
		listingRoutes := api.Group("/listings")
		{
			listingRoutes.GET("", authOptional, listingHandler.Search)
			listingRoutes.GET("/my-listings", authRequired, landlordOnly, listingHandler.MyListings) // Must be before /:id
			listingRoutes.GET("/:id", authOptional, listingHandler.GetByID)

			listingRoutes.POST("", authRequired, landlordOnly, listingHandler.Create)
			listingRoutes.PUT("/:id", authRequired, landlordOnly, listingHandler.Update)
			listingRoutes.DELETE("/:id", authRequired, landlordOnly, listingHandler.Delete)
			listingRoutes.PATCH("/:id/status", authRequired, landlordOnly, listingHandler.SetStatus)
		}

		api.GET("/amenities", listingHandler.GetAmenities)

		// Application routes (protected)
		applicationRoutes := api.Group("/applications")
		applicationRoutes.Use(authRequired)
		{
			applicationRoutes.POST("", tenantOnly, applicationHandler.Apply)
			applicationRoutes.GET("/my-applications", tenantOnly, applicationHandler.MyApplications)
			applicationRoutes.GET("/listing/:id", landlordOnly, applicationHandler.ListForListing)
			applicationRoutes.PATCH("/:id/status", landlordOnly, applicationHandler.UpdateStatus)
		}

		// Message routes (protected)
		messageRoutes := api.Group("/messages")
		messageRoutes.Use(authRequired)
		{
			messageRoutes.POST("", messageHandler.Send)
			messageRoutes.GET("/my-conversations", messageHandler.MyConversations)
			messageRoutes.GET("/conversation/:otherUserId", messageHandler.Conversation)
			messageRoutes.PATCH("/:id/read", messageHandler.MarkRead)
			messageRoutes.GET("/unread-count", messageHandler.UnreadCount)
			messageRoutes.GET("/stream", messageHandler.Stream)
		}

		// User routes (protected)
		userRoutes := api.Group("/users")
		{
			userRoutes.GET("/flatmate-search", userHandler.FlatmateSearch)

			userRoutes.GET("/profile", authRequired, userHandler.GetProfile)
			userRoutes.PUT("/profile", authRequired, userHandler.UpdateProfile)
			userRoutes.DELETE("/profile", authRequired, userHandler.DeleteProfile)

			userRoutes.POST("/favorites", authRequired, tenantOnly, userHandler.AddFavorite)
			userRoutes.GET("/favorites", authRequired, tenantOnly, userHandler.ListFavorites)
			userRoutes.DELETE("/favorites/:listingId", authRequired, tenantOnly, userHandler.RemoveFavorite)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("server is running")
	log.Info().Msgf("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
