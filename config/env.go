package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	SourceMQTT      = "mqtt"
	SourceSimulator = "simulator"
)

// Config is read from the environment. An empty PostgresDSN, RabbitMQURL
// or MQTTBroker disables that dependency.
type Config struct {
	HTTPPort string
	AppEnv   string
	LogLevel string

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresDSN  string
	AutoMigrate  bool
	RabbitMQURL  string
	MQTTBroker   string
	MQTTClientID string

	PositionSource    string
	DeviceID          string
	SimulatorInterval time.Duration

	ShutdownTimeout time.Duration
}

func Load() *Config {
	// a missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:  getEnv("STORE_BACKEND", StoreMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "safety:"),

		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		AutoMigrate:  getEnvAsBool("AUTO_MIGRATE", true),
		RabbitMQURL:  getEnv("RABBITMQ_URL", ""),
		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "safetrip-server"),

		PositionSource:    getEnv("POSITION_SOURCE", SourceSimulator),
		DeviceID:          getEnv("DEVICE_ID", "device-1"),
		SimulatorInterval: getEnvAsDuration("SIMULATOR_INTERVAL", 2*time.Second),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
