package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"rocketbet/config"
	"rocketbet/database"
	"rocketbet/events"
	"rocketbet/repository"
	"rocketbet/service"
	"rocketbet/web"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting rocketbet server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingCredits)
	bettingService := service.NewBettingService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory)
	roundService := service.NewRoundService(uowFactory)
	statsService := service.NewStatsService(uowFactory)
	gameService := service.NewGameService(uowFactory, cfg.StartingCredits)
	log.Println("Services initialized successfully")

	// Seed the round definitions
	if err := roundService.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to seed rounds: %w", err)
	}

	// Wire live updates: event bus -> WebSocket hub
	hub := web.NewHub()
	go hub.Run()
	web.NewNotifier(hub, eventBus)

	// Initialize the HTTP server
	server := web.NewServer(cfg, userService, bettingService, settlementService, roundService, statsService, gameService, hub)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Printf("Server is running in %s mode...", cfg.Environment)

	select {
	case err := <-errCh:
		db.Close()
		return err
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
