package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config runtime configuration, sourced from the environment with an
// optional .env file.
type Config struct {
	Server ServerConfig
	API    APIConfig
	Engine EngineConfig
	Limits LimitsConfig
}

type ServerConfig struct {
	Addr string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type EngineConfig struct {
	Quiet      time.Duration
	AlwaysLive bool
}

type LimitsConfig struct {
	File string // optional YAML override of the transfer ceilings
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Load reads configuration, preferring the process environment over .env
// over built-in defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr: getEnv("ADDR", ":8080"),
		},
		API: APIConfig{
			BaseURL: getEnv("FX_API_URL", "https://my.transfergo.com"),
			Timeout: getEnvAsDuration("FX_API_TIMEOUT", 5*time.Second),
		},
		Engine: EngineConfig{
			Quiet:      getEnvAsDuration("DEBOUNCE_QUIET", 300*time.Millisecond),
			AlwaysLive: getEnvAsBool("ALWAYS_LIVE", false),
		},
		Limits: LimitsConfig{
			File: getEnv("LIMITS_FILE", ""),
		},
	}
}
