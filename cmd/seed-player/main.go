package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/playmatatu/brickduel/internal/accounts"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := os.Getenv("SEED_PLAYER_NAME")
	if name == "" {
		name = "tester"
		log.Printf("Using default player name: %s", name)
	}

	pin := os.Getenv("SEED_PLAYER_PIN")
	if pin == "" {
		pin = "0000"
		log.Printf("WARNING: Using default PIN. Set SEED_PLAYER_PIN for anything but local testing!")
	}

	p, err := accounts.UpsertPlayer(db, name, pin)
	if err != nil {
		log.Fatalf("Failed to seed player: %v", err)
	}

	log.Printf("✓ Player created/updated successfully")
	log.Printf("  ID: %d", p.ID)
	log.Printf("  Display Name: %s", p.DisplayName)
	log.Println("\nLog in with POST /api/v1/auth/login using this name and PIN.")
}
