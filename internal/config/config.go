package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Engagement widget configuration
	Engagement EngagementConfig `yaml:"engagement"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

// EngagementConfig holds settings for views, ratings, comments and live updates
type EngagementConfig struct {
	// NotifyChannel is the Postgres LISTEN channel carrying changed store paths.
	NotifyChannel   string        `yaml:"notify_channel"`
	ListenerEnabled bool          `yaml:"listener_enabled"`
	ViewWorkers     int           `yaml:"view_workers"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	VoteCookieTTL   time.Duration `yaml:"vote_cookie_ttl"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	KeepAlive       time.Duration `yaml:"keep_alive"`
	MaxCardIDs      int           `yaml:"max_card_ids"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    0, // SSE streams are long-lived
			ShutdownTimeout: 30 * time.Second,
			MigrationsPath:  "./migrations",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Password:     "postgres",
			Name:         "article_engagement",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		},
		Engagement: EngagementConfig{
			NotifyChannel:   "engagement_changes",
			ListenerEnabled: true,
			ViewWorkers:     16,
			WriteTimeout:    10 * time.Second,
			VoteCookieTTL:   365 * 24 * time.Hour,
			KeepAlive:       25 * time.Second,
			MaxCardIDs:      100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables. Environment variables win.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Server.MigrationsPath)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", c.Database.MaxLifetime)

	c.Engagement.NotifyChannel = getEnv("ENGAGEMENT_NOTIFY_CHANNEL", c.Engagement.NotifyChannel)
	c.Engagement.ListenerEnabled = getBoolEnv("ENGAGEMENT_LISTENER_ENABLED", c.Engagement.ListenerEnabled)
	c.Engagement.ViewWorkers = getIntEnv("ENGAGEMENT_VIEW_WORKERS", c.Engagement.ViewWorkers)
	c.Engagement.WriteTimeout = getDurationEnv("ENGAGEMENT_WRITE_TIMEOUT", c.Engagement.WriteTimeout)
	c.Engagement.VoteCookieTTL = getDurationEnv("ENGAGEMENT_VOTE_COOKIE_TTL", c.Engagement.VoteCookieTTL)
	c.Engagement.SecureCookies = getBoolEnv("ENGAGEMENT_SECURE_COOKIES", c.Engagement.SecureCookies)
	c.Engagement.KeepAlive = getDurationEnv("ENGAGEMENT_KEEP_ALIVE", c.Engagement.KeepAlive)
	c.Engagement.MaxCardIDs = getIntEnv("ENGAGEMENT_MAX_CARD_IDS", c.Engagement.MaxCardIDs)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Engagement.NotifyChannel == "" {
		return fmt.Errorf("ENGAGEMENT_NOTIFY_CHANNEL is required")
	}
	if c.Engagement.ViewWorkers < 1 {
		return fmt.Errorf("ENGAGEMENT_VIEW_WORKERS must be at least 1, got %d", c.Engagement.ViewWorkers)
	}
	if c.Engagement.MaxCardIDs < 1 {
		return fmt.Errorf("ENGAGEMENT_MAX_CARD_IDS must be at least 1, got %d", c.Engagement.MaxCardIDs)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
