package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration
type Config struct {
	// Database
	DatabaseHost     string
	DatabasePort     string
	PostgresUser     string
	PostgresPassword string
	DatabaseName     string

	// Authentication
	SecretKey string

	// HTTP
	AllowedHosts           []string
	APIStaticCacheDuration time.Duration

	// Debugging
	DebugQueries   bool
	LoggingColored bool

	// Local development toggles
	UseLocalServer bool
	UseLocalMedia  bool
	UseLocalStatic bool

	// Discord
	DiscordClientID     string
	DiscordClientSecret string
	DiscordGuildID      string
	DiscordChannelID    string
	DiscordBotToken     string

	// Other
	KafkaBroker string
}

var (
	appConfig *Config
	onceEnv   sync.Once
)

// loadConfig loads and validates all environment variables
func loadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		// Database - required
		DatabaseHost:     getEnvWithDefault("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnvWithDefault("DATABASE_PORT", "5432"),
		PostgresUser:     getEnvWithDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvWithDefault("POSTGRES_PASSWORD", "postgres"),
		DatabaseName:     getEnvWithDefault("DATABASE_NAME", "postgres"),

		// JWT signing - required
		SecretKey: getEnvWithDefault("SECRET_KEY", "dummysecret"),

		// HTTP
		AllowedHosts:           getEnvAsList("ALLOWED_HOSTS", "http://localhost:3000"),
		APIStaticCacheDuration: getEnvAsDuration("API_STATIC_CACHE_DURATION", 60*time.Second),

		// Debugging
		DebugQueries:   getEnvWithDefault("DEBUG_QUERIES", "false") == "true",
		LoggingColored: getEnvWithDefault("LOGGING_COLORED", "true") == "true",

		// Local development toggles
		UseLocalServer: getEnvWithDefault("USE_LOCAL_SERVER", "false") == "true",
		UseLocalMedia:  getEnvWithDefault("USE_LOCAL_MEDIA", "false") == "true",
		UseLocalStatic: getEnvWithDefault("USE_LOCAL_STATIC", "false") == "true",

		// Discord - optional
		DiscordClientID:     getEnv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET"),
		DiscordGuildID:      getEnv("DISCORD_GUILD_ID"),
		DiscordChannelID:    getEnv("DISCORD_CHANNEL_ID"),
		DiscordBotToken:     getEnv("DISCORD_BOT_TOKEN"),

		// Other
		KafkaBroker: getEnvWithDefault("KAFKA_BROKER", ""),
	}

	appConfig = config
	return config
}

func Env() *Config {
	onceEnv.Do(func() {
		appConfig = loadConfig()
	})
	return appConfig
}

// Helper functions
func getEnv(key string) string {
	value := os.Getenv(key)
	if value == "" && IsProduction() {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getEnvAsList(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	hosts := make([]string, 0)
	for _, host := range strings.Split(value, ",") {
		host = strings.TrimSpace(host)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Plain integers are seconds, matching the legacy setting
	var seconds int
	if _, err := fmt.Sscanf(valueStr, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// IsProduction returns true if running in production
func IsProduction() bool {
	return getEnvWithDefault("ENVIRONMENT", "development") == "production"
}

// IsDevelopment returns true if running in development
func IsDevelopment() bool {
	return !IsProduction()
}
