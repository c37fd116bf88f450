package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// HitOrder selects how competing targets along one ray are ranked.
type HitOrder string

const (
	// HitOrderNearest damages the target with the smallest distance along the ray.
	HitOrderNearest HitOrder = "nearest"
	// HitOrderOrdered damages the first target in iteration order
	// (buildings by ascending id, players by join order).
	HitOrderOrdered HitOrder = "ordered"
)

type Config struct {
	Host              string
	Port              string
	UseTLS            bool
	TLSCert           string
	TLSKey            string
	SecretKey         string
	MongoDBURL        string
	SQLitePath        string
	StaticDir         string
	LogLevel          slog.Level
	WorldSeed         int64
	BuildingCount     int
	HitOrder          HitOrder
	MaxMessagesPerSec int
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	config := &Config{
		Host:              getEnvOrDefault("HOST", "localhost"),
		Port:              getEnvOrDefault("PORT", "3000"),
		UseTLS:            getEnvOrDefault("USE_TLS", "") == "true",
		TLSCert:           getEnvOrDefault("TLS_CERT", ""),
		TLSKey:            getEnvOrDefault("TLS_KEY", ""),
		SecretKey:         getEnvOrDefault("SECRET_KEY", ""),
		MongoDBURL:        getEnvOrDefault("MONGODB_URL", ""),
		SQLitePath:        getEnvOrDefault("SQLITE_PATH", ""),
		StaticDir:         getEnvOrDefault("STATIC_DIR", ""),
		LogLevel:          parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WorldSeed:         int64(getEnvInt("WORLD_SEED", 0)),
		BuildingCount:     getEnvInt("BUILDING_COUNT", DefaultBuildingCount),
		HitOrder:          parseHitOrder(getEnvOrDefault("HIT_ORDER", string(HitOrderNearest))),
		MaxMessagesPerSec: getEnvInt("MAX_MESSAGES_PER_SEC", DefaultMaxMessagesPerSec),
	}

	if config.BuildingCount < 0 {
		config.BuildingCount = 0
	}
	if config.MaxMessagesPerSec <= 0 {
		config.MaxMessagesPerSec = DefaultMaxMessagesPerSec
	}

	AppConfig = config
	return config
}

// Default returns the configuration used when no environment is loaded.
func Default() *Config {
	return &Config{
		Host:              "localhost",
		Port:              "3000",
		LogLevel:          slog.LevelInfo,
		BuildingCount:     DefaultBuildingCount,
		HitOrder:          HitOrderNearest,
		MaxMessagesPerSec: DefaultMaxMessagesPerSec,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if str := os.Getenv(key); str != "" {
		if val, err := strconv.Atoi(str); err == nil {
			return val
		}
		slog.Warn("ignoring non-integer environment value", "key", key, "value", str)
	}
	return defaultValue
}

func parseHitOrder(value string) HitOrder {
	switch HitOrder(strings.ToLower(value)) {
	case HitOrderOrdered:
		return HitOrderOrdered
	default:
		return HitOrderNearest
	}
}

func parseLogLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}
