package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
)

// Durable snapshot backends
const (
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Upstream source kinds
const (
	UpstreamGenerator = "generator"
	UpstreamHTTP      = "http"
)

// Config holds all configuration for odds-cache-service
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"` // Negative never expires, zero is always expired
	Key            string
	Backend        string // redis, file, memory
	FileDir        string `mapstructure:"file_dir"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // Zero keeps the record until it is replaced or cleared
}

// UpstreamConfig holds odds source configuration
type UpstreamConfig struct {
	Kind       string // generator, http
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Sport      string // upcoming, live or a sport key
	Regions    string
	Markets    string
	Timeout    time.Duration
	EventCount int           `mapstructure:"event_count"`
	Latency    time.Duration // Simulated delay of the generator
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string // Topic to consume snapshots from (odds_snapshots)
	GroupID string `mapstructure:"group_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("cache.timeout_seconds", cache.DefaultTimeout.Seconds())
	v.SetDefault("cache.key", cache.DefaultKey)
	v.SetDefault("cache.backend", BackendRedis)
	v.SetDefault("cache.file_dir", "./data")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 0)

	v.SetDefault("upstream.kind", UpstreamGenerator)
	v.SetDefault("upstream.base_url", "https://api.mockodds.com/v4")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.sport", "upcoming")
	v.SetDefault("upstream.regions", "us")
	v.SetDefault("upstream.markets", "h2h")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.event_count", 15)
	v.SetDefault("upstream.latency", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "odds_snapshots")
	v.SetDefault("kafka.group_id", "odds-cache")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ODDS_CACHE")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks values that would otherwise fail at startup
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.Cache.Backend {
	case BackendRedis, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Key == "" {
		return fmt.Errorf("cache.key is required")
	}

	switch c.Upstream.Kind {
	case UpstreamGenerator, UpstreamHTTP:
	default:
		return fmt.Errorf("unknown upstream.kind %q", c.Upstream.Kind)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}

	return nil
}

// Policy converts the configured timeout to a cache validity policy
func (c *CacheConfig) Policy() cache.Policy {
	return cache.PolicyFromSeconds(c.TimeoutSeconds)
}
