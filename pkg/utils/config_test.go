package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "cinema-ticketing", Timezone: "Asia/Ho_Chi_Minh"},
		Backend:  BackendConfig{Mode: BackendModePostgres, BaseURL: "http://backend", Timeout: 15 * time.Second},
		Database: DatabaseConfig{Host: "localhost", Port: "5432", Name: "cinema", MaxConns: 10},
		Redis:    RedisConfig{StoreDriver: StoreDriverMemory, SessionTTL: 30 * time.Minute},
		JWT:      JWTConfig{Secret: "secret"},
		Events:   EventsConfig{Driver: EventsDriverNone},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend mode", func(c *Config) { c.Backend.Mode = "grpc" }},
		{"no backend url", func(c *Config) { c.Backend.BaseURL = "" }},
		{"postgres without host", func(c *Config) { c.Database.Host = "" }},
		{"zero pool size", func(c *Config) { c.Database.MaxConns = 0 }},
		{"negative pool size", func(c *Config) { c.Database.MaxConns = -1 }},
		{"unknown store", func(c *Config) { c.Redis.StoreDriver = "etcd" }},
		{"rabbitmq without url", func(c *Config) { c.Events.Driver = EventsDriverRabbitMQ }},
		{"kafka without brokers", func(c *Config) { c.Events.Driver = EventsDriverKafka }},
		{"no jwt secret", func(c *Config) { c.JWT.Secret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_Validate_PoolSizeIgnoredInAPIMode(t *testing.T) {
	c := validConfig()
	c.Backend.Mode = BackendModeAPI
	c.Database = DatabaseConfig{}

	assert.NoError(t, c.Validate())
}
