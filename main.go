package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/handlers"
	"github.com/colearn-app/colearn-api/jobs"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	utils.LogStartup("CoLearn API starting...")

	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, using environment variables")
	}

	port := utils.GetEnvOrDefault("PORT", "8046")
	dbPath := utils.GetEnvOrDefault("DB_PATH", "./colearn.db")
	redisURL := utils.GetEnvOrDefault("REDIS_URL", "redis://localhost:6379")
	utils.LogStartup("Config: port=%s db=%s redis=%s", port, dbPath, redisURL)

	utils.LogStartup("Initializing database connection...")
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize database: %v", err)
	}

	sessionStore := auth.NewSessionStore()

	emailConfig := auth.LoadEmailConfig()
	emailService := auth.NewEmailService(emailConfig)

	aiClient := ai.NewClient(ai.LoadConfig())

	// Redis backs both the job queue and the leaderboard cache. The
	// leaderboard degrades to SQL when redis is unreachable.
	rdb := redis.NewClient(&redis.Options{Addr: strings.TrimPrefix(redisURL, "redis://")})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		utils.LogError("Redis unreachable (%v), leaderboard cache disabled", err)
		rdb = nil
	}
	leaderboard := arena.NewLeaderboard(rdb)

	battles := arena.NewBattleStore()

	jobManager := jobs.NewJobManager(redisURL)
	jobManager.RegisterHandlers(emailService)
	go func() {
		if err := jobManager.Start(); err != nil {
			utils.LogError("Job queue worker stopped: %v", err)
		}
	}()

	scheduler := jobs.NewScheduler(database, leaderboard)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("[FATAL] Failed to start scheduler: %v", err)
	}

	utils.LogStartup("Setting up API routes...")
	router := handlers.NewRouter(database, sessionStore, emailService, aiClient, battles, leaderboard, jobManager)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		utils.LogShutdown("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			utils.LogError("Server shutdown error: %v", err)
		}

		scheduler.Stop()
		jobManager.Stop()

		if err := database.Close(); err != nil {
			utils.LogError("Error closing database: %v", err)
		} else {
			utils.LogShutdown("Database connection closed")
		}
		os.Exit(0)
	}()

	utils.LogStartup("Server ready to accept connections at http://localhost:%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
}
