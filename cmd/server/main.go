package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huntserver/internal/api"
	"huntserver/internal/app/service"
	"huntserver/internal/common/security"
	"huntserver/internal/domain/repository"
	"huntserver/internal/platform/config"
	"huntserver/internal/platform/database"
	"huntserver/internal/platform/events"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.CreateSchema(database.DB); err != nil {
		log.Fatalf("Could not create schema: %v", err)
	}
	fmt.Println("Database connected.")

	// 4. Initialize Redis (team status event feed)
	events.ConnectRedis()
	defer events.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	personRepo := repository.NewPgPersonRepository(database.DB)
	huntRepo := repository.NewPgHuntRepository(database.DB)
	puzzleRepo := repository.NewPgPuzzleRepository(database.DB)
	teamRepo := repository.NewPgTeamRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	messageRepo := repository.NewPgMessageRepository(database.DB)

	// 6. Initialize Services
	publisher := events.NewRedisPublisher(events.RDB, config.AppConfig.TeamStatusChannelPrefix)
	authService := service.NewAuthService(personRepo)
	huntService := service.NewHuntService(huntRepo, database.DB)
	unlockService := service.NewUnlockService(puzzleRepo, submissionRepo)
	puzzleService := service.NewPuzzleService(puzzleRepo, database.DB)
	teamService := service.NewTeamService(teamRepo, submissionRepo, huntService, unlockService, database.DB)
	messageService := service.NewMessageService(messageRepo, teamRepo)
	submissionService := service.NewSubmissionService(submissionRepo, puzzleRepo, teamRepo, unlockService, publisher, database.DB)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, huntService, puzzleService, teamService, messageService, submissionService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
