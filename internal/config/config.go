package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	NATSURL               string
	JWTSecret             string
	JWTRefreshSecret      string
	EventChannel          string
	EligibleCacheTTL      time.Duration
	PlacedCTCThresholdLPA float64
	SweepSchedule         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PLACEMENT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Placement API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("event.channel", "placement:events")
	v.SetDefault("eligible.cache_ttl", "2m")
	v.SetDefault("placed.ctc_threshold_lpa", 10.0)
	v.SetDefault("sweep.schedule", "*/5 * * * *")

	ttlString := v.GetString("eligible.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid eligible cache ttl: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		JWTSecret:             v.GetString("jwt.secret"),
		JWTRefreshSecret:      v.GetString("jwt.refresh_secret"),
		EventChannel:          v.GetString("event.channel"),
		EligibleCacheTTL:      ttl,
		PlacedCTCThresholdLPA: v.GetFloat64("placed.ctc_threshold_lpa"),
		SweepSchedule:         v.GetString("sweep.schedule"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.PlacedCTCThresholdLPA <= 0 {
		cfg.PlacedCTCThresholdLPA = 10.0
	}

	return cfg, nil
}
