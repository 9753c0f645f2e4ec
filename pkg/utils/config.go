package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	Timezone string
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

const (
	BackendModeAPI      = "api"
	BackendModePostgres = "postgres"
)

type BackendConfig struct {
	Mode     string
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	StoreDriver string
	SessionTTL  time.Duration
	CacheTTL    time.Duration
}

type JWTConfig struct {
	Secret string
}

const (
	EventsDriverNone     = "none"
	EventsDriverRabbitMQ = "rabbitmq"
	EventsDriverKafka    = "kafka"
)

type EventsConfig struct {
	Driver       string
	RabbitMQURL  string
	Queue        string
	KafkaBrokers []string
	Topic        string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig reads .env when present, then lets the process environment
// override any key.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "cinema-ticketing")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("BACKEND_MODE", BackendModeAPI)
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("CACHE_TTL", "0s")
	v.SetDefault("EVENTS_DRIVER", EventsDriverNone)
	v.SetDefault("EVENTS_QUEUE", "booking.created")
	v.SetDefault("EVENTS_TOPIC", "booking.created")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Port:     v.GetString("PORT"),
			Debug:    v.GetBool("DEBUG"),
			LogPath:  v.GetString("LOG_PATH"),
			Timezone: v.GetString("TIMEZONE"),
		},
		Backend: BackendConfig{
			Mode:     strings.ToLower(v.GetString("BACKEND_MODE")),
			BaseURL:  v.GetString("BACKEND_BASE_URL"),
			APIToken: v.GetString("BACKEND_API_TOKEN"),
			Timeout:  v.GetDuration("BACKEND_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("REDIS_ADDR"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
			SessionTTL:  v.GetDuration("SESSION_TTL"),
			CacheTTL:    v.GetDuration("CACHE_TTL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Events: EventsConfig{
			Driver:       strings.ToLower(v.GetString("EVENTS_DRIVER")),
			RabbitMQURL:  v.GetString("RABBITMQ_URL"),
			Queue:        v.GetString("EVENTS_QUEUE"),
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:        v.GetString("EVENTS_TOPIC"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Backend.Mode {
	case BackendModeAPI, BackendModePostgres:
	default:
		return fmt.Errorf("invalid BACKEND_MODE %q", c.Backend.Mode)
	}
	// Payment verification always goes through the backend API.
	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	if c.Backend.Mode == BackendModePostgres && c.Database.Host == "" {
		return errors.New("DB_HOST is required when BACKEND_MODE=postgres")
	}
	if c.Backend.Mode == BackendModePostgres && c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.Database.MaxConns)
	}
	switch c.Redis.StoreDriver {
	case StoreDriverMemory, StoreDriverRedis:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Redis.StoreDriver)
	}
	switch c.Events.Driver {
	case EventsDriverNone:
	case EventsDriverRabbitMQ:
		if c.Events.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when EVENTS_DRIVER=rabbitmq")
		}
	case EventsDriverKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENTS_DRIVER=kafka")
		}
	default:
		return fmt.Errorf("invalid EVENTS_DRIVER %q", c.Events.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
