package router

import (
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/Cl0v1s/mangane/internal/handlers"
	"github.com/Cl0v1s/mangane/internal/middleware"
	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/notifications"
	"github.com/Cl0v1s/mangane/internal/repositories"
	"github.com/Cl0v1s/mangane/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, messagingClient *messaging.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Activity{},
		&models.Notification{},
		&models.Marker{},
		&models.ThreadMute{},
		&models.ThreadSubscription{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	activityRepo := repositories.NewPostgresActivityRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb, cfg.NotificationPageLimit)
	objectRepo := repositories.NewMongoObjectRepository(mgClient.Database("mangane"))
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(pgdb)

	// --- Fan-out engine ---
	resolver := notifications.NewResolver(userRepo, objectRepo)
	filter := notifications.NewFilter(followRepo, notificationRepo)
	dispatcher := notifications.MultiDispatcher{notifications.LogDispatcher{}}
	if messagingClient != nil {
		dispatcher = append(dispatcher, notifications.NewPushDispatcher(messagingClient, deviceTokenRepo))
		log.Println("Push delivery enabled.")
	}
	service := notifications.NewService(resolver, filter, notificationRepo, dispatcher)

	// --- Internal routes for the activity ingestion pipeline ---
	internal := e.Group("/internal")
	fanoutHandler := handlers.NewFanoutHandler(activityRepo, service)
	fanoutHandler.RegisterFanoutRoutes(internal)
	log.Println("Internal fan-out routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Notification setting routes
	settingsHandler := handlers.NewSettingsHandler(userRepo)
	settingsHandler.RegisterSettingsRoutes(api)
	log.Println("Notification setting routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, activityRepo, service)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Push subscription routes
	pushHandler := handlers.NewPushHandler(deviceTokenRepo)
	pushHandler.RegisterPushRoutes(api)
	log.Println("Push subscription routes configured.")

	log.Println("All routes configured.")
}
