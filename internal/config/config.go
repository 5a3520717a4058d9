// Package config provides configuration management for the pattern server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/bbernstein/lacylights-patterns/internal/database"
	"github.com/bbernstein/lacylights-patterns/internal/services/dmx"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Database configuration
	DatabaseURL string
	LoadPresets bool

	// Pattern engine
	TickRateHz      int
	EvictInterval   time.Duration
	GlobalIntensity float64
	GlobalSpeed     float64
	RandomSeed      uint64
	SceneFile       string

	// DMX configuration
	DMXUniverseCount    int
	DMXRefreshRate      int           // Hz (active)
	DMXIdleRate         int           // Hz (idle)
	DMXHighRateDuration time.Duration // Duration to stay in high rate after changes

	// Art-Net configuration
	ArtNetEnabled   bool
	ArtNetPort      int
	ArtNetBroadcast string

	// Logging
	LogLevel string
	LogJSON  bool

	// CORS configuration
	CORSOrigin string
}

// Load loads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "4100"),
		Env:  getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "file:./patterns.db"),
		LoadPresets: getEnvBool("LOAD_PRESETS", true),

		// Pattern engine
		TickRateHz:      getEnvInt("TICK_RATE", 60),
		EvictInterval:   time.Duration(getEnvInt("EVICT_INTERVAL", 5000)) * time.Millisecond,
		GlobalIntensity: getEnvFloat("GLOBAL_INTENSITY", 1),
		GlobalSpeed:     getEnvFloat("GLOBAL_SPEED", 1),
		RandomSeed:      getEnvUint("RANDOM_SEED", 0),
		SceneFile:       getEnv("SCENE_FILE", ""),

		// DMX
		DMXUniverseCount:    getEnvInt("DMX_UNIVERSE_COUNT", 4),
		DMXRefreshRate:      getEnvInt("DMX_REFRESH_RATE", 44),
		DMXIdleRate:         getEnvInt("DMX_IDLE_RATE", 1),
		DMXHighRateDuration: time.Duration(getEnvInt("DMX_HIGH_RATE_DURATION", 2000)) * time.Millisecond,

		// Art-Net
		ArtNetEnabled:   getEnvBool("ARTNET_ENABLED", false),
		ArtNetPort:      getEnvInt("ARTNET_PORT", 6454),
		ArtNetBroadcast: getEnv("ARTNET_BROADCAST", "255.255.255.255"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		// CORS
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DMX returns the DMX service configuration.
func (c *Config) DMX() dmx.Config {
	return dmx.Config{
		Enabled:          c.ArtNetEnabled,
		BroadcastAddr:    c.ArtNetBroadcast,
		Port:             c.ArtNetPort,
		UniverseCount:    c.DMXUniverseCount,
		RefreshRateHz:    c.DMXRefreshRate,
		IdleRateHz:       c.DMXIdleRate,
		HighRateDuration: c.DMXHighRateDuration,
	}
}

// Database returns the database connection configuration.
func (c *Config) Database() database.Config {
	return database.Config{
		URL:         c.DatabaseURL,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
		Debug:       c.IsDevelopment() && c.LogLevel == "debug",
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvUint returns the unsigned integer value of an environment variable or a default value.
func getEnvUint(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvFloat returns the float value of an environment variable or a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
