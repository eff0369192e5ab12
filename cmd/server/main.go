package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/Cl0v1s/mangane/internal/router"
	"github.com/Cl0v1s/mangane/pkg/config"
	"github.com/Cl0v1s/mangane/pkg/firebase"
	"github.com/Cl0v1s/mangane/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase messaging for push delivery; the engine runs
	// without push when no credentials are configured.
	var messagingClient *messaging.Client
	if cfg.FirebaseCredentialsPath != "" {
		ctx := context.Background()
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		messagingClient = firebaseApp.MessagingClient
	} else {
		log.Println("Firebase credentials not provided; push delivery disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, messagingClient)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
