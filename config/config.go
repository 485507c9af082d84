package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking engine policy. Cutoff and grace are injectable rather than
	// hard-coded so deployments can tune them.
	CancelCutoffMin    int `mapstructure:"CANCEL_CUTOFF_MIN"`
	NoShowGraceMin     int `mapstructure:"NO_SHOW_GRACE_MIN"`
	SlotCacheTTLSec    int `mapstructure:"SLOT_CACHE_TTL_SEC"`
	BookingMaxRetries  int `mapstructure:"BOOKING_MAX_RETRIES"`
	BookingRetryBaseMs int `mapstructure:"BOOKING_RETRY_BASE_MS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("CANCEL_CUTOFF_MIN", 120)
	viper.SetDefault("NO_SHOW_GRACE_MIN", 30)
	viper.SetDefault("SLOT_CACHE_TTL_SEC", 30)
	viper.SetDefault("BOOKING_MAX_RETRIES", 3)
	viper.SetDefault("BOOKING_RETRY_BASE_MS", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CancelCutoff returns the minimum lead time before an appointment's start
// after which cancellation is no longer permitted.
func CancelCutoff() time.Duration {
	return time.Duration(AppConfig.CancelCutoffMin) * time.Minute
}

// NoShowGrace returns how long after a confirmed appointment's scheduled end
// the sweep waits before marking it a no-show.
func NoShowGrace() time.Duration {
	return time.Duration(AppConfig.NoShowGraceMin) * time.Minute
}

// SlotCacheTTL returns the lifetime of cached per-day slot lists.
func SlotCacheTTL() time.Duration {
	return time.Duration(AppConfig.SlotCacheTTLSec) * time.Second
}
