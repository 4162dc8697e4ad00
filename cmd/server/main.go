package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playmatatu/brickduel/internal/api"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/database"
	"github.com/playmatatu/brickduel/internal/migrations"
	"github.com/playmatatu/brickduel/internal/redis"
	"github.com/playmatatu/brickduel/internal/session"
	"github.com/playmatatu/brickduel/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	settings, err := cfg.Settings()
	if err != nil {
		log.Fatalf("Failed to load game tuning: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	store := session.NewStore(db, rdb)
	manager := session.NewManager(cfg, settings, rdb, store)
	defer manager.Shutdown()

	hub := ws.NewHub()
	go hub.Run()
	manager.SetPublisher(hub)

	// Idle sessions are paused, then closed; notices reach clients via redis.
	ws.StartEventSubscriber(ctx, rdb, hub)
	session.StartIdleWorker(ctx, manager)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		DB:          db,
		Config:      cfg,
		Sessions:    manager,
		Hub:         hub,
		Leaderboard: store,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting Brick Duel server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
}
