package main

import (
	"log"
	"net/http"
	"time"

	"ecopoints-server/config"
	"ecopoints-server/database"
	"ecopoints-server/handlers"
	"ecopoints-server/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Pick the store: Postgres in production, in-memory for local runs
	// without a database
	var store services.Store
	switch config.AppConfig.StoreDriver {
	case "memory":
		log.Println("Using in-memory store")
		memStore := database.NewMemoryStore()
		memStore.SeedDefaults()
		store = memStore
	default:
		db, err := database.Connect(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		if err := db.InitializeTables(); err != nil {
			log.Fatal("Failed to initialize tables:", err)
		}
		store = database.NewPostgresStore(db)
	}

	// Initialize Cloudinary for delivery photos (optional)
	if config.AppConfig.CloudinaryURL != "" {
		if err := services.InitializePhotos(config.AppConfig.CloudinaryURL); err != nil {
			log.Printf("WARNING: Failed to initialize Cloudinary: %v", err)
		}
	}

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "EcoPoints Server is running",
			"timestamp": time.Now().Unix(),
		})
	})

	// Initialize handlers
	handlers.InitializeHandlers(store)

	// API routes
	api := router.Group("/api/v1")
	{
		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.RegisterUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/validate", handlers.ValidateToken)
		}

		// Catalog routes (read-only)
		api.GET("/waste-types", handlers.GetWasteTypes)
		api.GET("/rewards", handlers.GetRewards)

		// User routes
		api.GET("/users/me", handlers.AuthMiddleware(), handlers.GetProfile)

		// Delivery routes
		deliveries := api.Group("/deliveries", handlers.AuthMiddleware())
		{
			deliveries.POST("", handlers.CreateDelivery)
			deliveries.GET("", handlers.GetMyDeliveries)
			deliveries.GET("/pending", handlers.StaffMiddleware(), handlers.GetPendingDeliveries)
			deliveries.GET("/:id", handlers.GetDelivery)
			deliveries.POST("/:id/validate", handlers.StaffMiddleware(), handlers.ValidateDelivery)
		}

		// Points routes
		points := api.Group("/points", handlers.AuthMiddleware())
		{
			points.GET("/balance", handlers.GetBalance)
			points.GET("/history", handlers.GetPointsHistory)
		}

		// Redemption routes
		redemptions := api.Group("/redemptions", handlers.AuthMiddleware())
		{
			redemptions.POST("", handlers.RedeemReward)
			redemptions.GET("", handlers.GetMyRedemptions)
		}

		// Upload routes
		api.POST("/uploads/delivery-photo", handlers.AuthMiddleware(), handlers.UploadDeliveryPhoto)
	}

	// Start server
	port := config.AppConfig.ServerPort
	log.Printf("Starting EcoPoints Server on port %s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, corsHandler.Handler(router)))
}
