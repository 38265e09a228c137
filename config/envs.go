package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP        string        // Host IP for the server
	RESTPort      int           // Port for the REST API and the game socket
	DBHost        string        // Hostname or IP address for the database
	DBPort        int           // Port number for the database
	DBUser        string        // Username for the database
	DBPassword    string        // Password for the database
	DBName        string        // Name of the database
	RedisAddr     string        // Address of the redis server backing matchmaking and the leaderboard
	RedisPassword string        // Password of the redis server
	GinMode       string        // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret     string        // Secret key for signing room tickets
	JWTIssuer     string        // Issuer claim for room tickets
	MapWidth      int           // Width of the playing field, walls included
	MapHeight     int           // Height of the playing field, walls included
	TargetScore   int           // Score that wins a game
	TickRate      int           // Simulation ticks per second
	GameDuration  time.Duration // Hard limit of a game
	Cooldown      time.Duration // Collision cooldown between the same pair
	MatchSize     int           // Players per online match
	QueueTTL      int           // Seconds a matchmaking queue lives without activity
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		DBHost:        mustGetEnv("DB_HOST"),
		DBPort:        mustGetEnvAsInt("DB_PORT"),
		DBUser:        mustGetEnv("DB_USER"),
		DBPassword:    mustGetEnv("DB_PASS"),
		DBName:        mustGetEnv("DB_NAME"),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		GinMode:       getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:     mustGetEnv("JWT_SECRET"),
		JWTIssuer:     mustGetEnv("JWT_ISSUER"),
		HostIP:        mustGetEnv("HOST_IP"),
		RESTPort:      mustGetEnvAsInt("REST_PORT"),
		MapWidth:      getEnvAsIntWithDefault("MAP_WIDTH", 20),
		MapHeight:     getEnvAsIntWithDefault("MAP_HEIGHT", 15),
		TargetScore:   getEnvAsIntWithDefault("TARGET_SCORE", 50),
		TickRate:      getEnvAsIntWithDefault("TICK_RATE", 20),
		GameDuration:  getEnvAsDurationWithDefault("GAME_DURATION", 5*time.Minute),
		Cooldown:      getEnvAsDurationWithDefault("COOLDOWN", 100*time.Millisecond),
		MatchSize:     getEnvAsIntWithDefault("MATCH_SIZE", 2),
		QueueTTL:      getEnvAsIntWithDefault("QUEUE_TTL", 120),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable or returns a default value if not set.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsDurationWithDefault retrieves a duration (e.g. "150ms", "5m") or returns a default value if not set.
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a duration: %v", key, err)
	}
	return value
}
