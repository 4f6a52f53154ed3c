package config

import (
	"os"
	"strconv"
)

// Config is the environment-driven service configuration.
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string

	AdminUsername string
	AdminPassword string
	JWTSecret     string

	GameEngineURL    string
	GameEngineAPIKey string

	// PracticeMaxSessionMinutes caps practice-session extensions measured
	// from the original session start.
	PracticeMaxSessionMinutes int
}

func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "gameboard"),
		RedisAddr:     getEnv("REDIS_URI", "localhost:6379"),
		Port:          getEnv("PORT", "8080"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "password123"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),

		GameEngineURL:    getEnv("GAME_ENGINE_URL", "http://localhost:5000"),
		GameEngineAPIKey: os.Getenv("GAME_ENGINE_API_KEY"),

		PracticeMaxSessionMinutes: getEnvInt("PRACTICE_MAX_SESSION_MINUTES", 480),
	}
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
