package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/playmatatu/brickduel/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionIdleSeconds    int
	IdleWorkerPollSeconds int
	BroadcastHz           int
	LeaderboardSize       int

	// Game
	TuningFile string
	MatchSeed  uint64 // 0 means a fresh seed per match

	// Security
	JWTSecret       string
	TokenExpiryHour int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/brickduel?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		SessionIdleSeconds:    getEnvInt("SESSION_IDLE_SECONDS", 120),
		IdleWorkerPollSeconds: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		BroadcastHz:           getEnvInt("BROADCAST_HZ", 30),
		LeaderboardSize:       getEnvInt("LEADERBOARD_SIZE", 20),

		// Game
		TuningFile: getEnv("GAME_TUNING_FILE", ""),
		MatchSeed:  getEnvUint("MATCH_SEED", 0),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenExpiryHour: getEnvInt("TOKEN_EXPIRY_HOURS", 24),
	}
}

// LoadTuning returns the default game tuning overlaid with the YAML file at
// path. Keys missing from the file keep their defaults. An empty path returns
// the defaults.
func LoadTuning(path string) (game.Tuning, error) {
	tuning := game.DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return tuning, nil
}

// Settings loads the tuning file named by the config and derives the match
// settings from it.
func (c *Config) Settings() (game.Settings, error) {
	tuning, err := LoadTuning(c.TuningFile)
	if err != nil {
		return game.Settings{}, err
	}
	return game.NewSettings(tuning), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
