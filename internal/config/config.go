package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage and session backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	BotToken string         `yaml:"bot_token"`
	LogLevel string         `yaml:"log_level"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
}

// GeminiConfig holds enrichment gateway settings
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig selects where words are kept
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	DataFile string `yaml:"data_file"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Migrations string `yaml:"migrations"`
}

// SessionConfig selects where conversation state is kept
type SessionConfig struct {
	Backend string `yaml:"backend"`
	TTL     string `yaml:"ttl"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns configuration with every optional field filled in
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "10s",
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			DataFile: "words.json",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: "5432",
			Name:       "alyabot",
			User:       "alyabot",
			Migrations: "migrations",
		},
		Session: SessionConfig{
			Backend: BackendMemory,
			TTL:     "30m",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// Load reads configuration from the optional CONFIG_FILE, then environment variables
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore reads configuration like Load but only validates the word store
// settings, for commands that never talk to Telegram or Gemini
func LoadStore() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.BotToken = getEnv("BOT_TOKEN", c.BotToken)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.BaseURL = getEnv("GEMINI_BASE_URL", c.Gemini.BaseURL)
	c.Gemini.Timeout = getEnv("ENRICH_TIMEOUT", c.Gemini.Timeout)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.DataFile = getEnv("DATA_FILE", c.Store.DataFile)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Migrations = getEnv("MIGRATIONS_DIR", c.Database.Migrations)

	c.Session.Backend = getEnv("SESSION_BACKEND", c.Session.Backend)
	c.Session.TTL = getEnv("SESSION_TTL", c.Session.TTL)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be a number: %w", err)
		}
		c.Redis.DB = db
	}

	return nil
}

// Validate checks required fields and backend names
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	if _, err := parseDuration(c.Gemini.Timeout); err != nil {
		return fmt.Errorf("invalid ENRICH_TIMEOUT: %w", err)
	}
	if _, err := parseDuration(c.Session.TTL); err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file store")
		}
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

// EnrichTimeout returns the per-request enrichment deadline
func (c *Config) EnrichTimeout() time.Duration {
	return durationOr(c.Gemini.Timeout, 10*time.Second)
}

// SessionTTL returns how long an idle conversation is kept
func (c *Config) SessionTTL() time.Duration {
	return durationOr(c.Session.TTL, 30*time.Minute)
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// durationOr parses a duration string or returns the fallback if empty or invalid
func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := parseDuration(raw)
	if err != nil || d == 0 {
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
