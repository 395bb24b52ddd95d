// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Codes     CodesConfig     `mapstructure:"codes"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	AdminToken  string `mapstructure:"admin_token"` // guards the manual recompute endpoint
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, live performance response cache
}

// CodesConfig contains invitation code issuance settings.
type CodesConfig struct {
	ExpiryDays  int `mapstructure:"expiry_days"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

// SchedulerConfig contains monthly performance calculation scheduler settings.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Time     string `mapstructure:"time"` // "HH:MM" on the 1st of each month
	Timezone string `mapstructure:"timezone"`
}

// NotifierConfig contains webhook notification settings for monthly snapshots.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// MetricsConfig contains Prometheus metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus endpoint settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/invite-tracker/")
	}

	// Defaults for optional sections
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "production")
	v.SetDefault("codes.expiry_days", 15)
	v.SetDefault("codes.max_attempts", 10)
	v.SetDefault("scheduler.time", "02:00")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("database.redis.cache_ttl", 60)
	v.SetDefault("metrics.prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")
	_ = v.BindEnv("server.admin_token", "SERVER_ADMIN_TOKEN")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")
	_ = v.BindEnv("database.redis.cache_ttl", "REDIS_CACHE_TTL")

	// Code issuance configuration
	_ = v.BindEnv("codes.expiry_days", "CODES_EXPIRY_DAYS")
	_ = v.BindEnv("codes.max_attempts", "CODES_MAX_ATTEMPTS")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	// Notifier configuration
	_ = v.BindEnv("notifier.webhook_url", "NOTIFIER_WEBHOOK_URL")
	_ = v.BindEnv("notifier.channel", "NOTIFIER_CHANNEL")
	_ = v.BindEnv("notifier.enabled", "NOTIFIER_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Codes.ExpiryDays <= 0 {
		return fmt.Errorf("codes.expiry_days must be positive")
	}
	if c.Codes.MaxAttempts <= 0 {
		return fmt.Errorf("codes.max_attempts must be positive")
	}
	if c.Notifier.Enabled && c.Notifier.WebhookURL == "" {
		return fmt.Errorf("notifier.webhook_url is required when notifier is enabled")
	}
	return nil
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
