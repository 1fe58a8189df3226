package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. The server, the cron
// runner and the terminal client read the same file; each validates only the
// sections it uses.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Admin     AdminConfig     `yaml:"admin"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Client    ClientConfig    `yaml:"client"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ReadTimeoutSeconds int    `yaml:"read_timeout_seconds"`
}

// DatabaseConfig selects the repository backend. "memory" keeps everything
// in process; "postgres" uses the connection settings below.
type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// EmailConfig contains notification email settings. An empty API key logs
// emails instead of sending them.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
	// QueueWorkers > 0 sends in the background instead of inline.
	QueueWorkers int `yaml:"queue_workers"`
	QueueSize    int `yaml:"queue_size"`
	MaxRetries   int `yaml:"max_retries"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	// Embedded runs the jobs inside the API server process. Required for the
	// memory database, which a separate cron process cannot see.
	Embedded                  bool   `yaml:"embedded"`
	ExpireFoodPosts           string `yaml:"expire_food_posts"`
	PendingVerificationDigest string `yaml:"pending_verification_digest"`
}

// AdminConfig describes the administrator account ensured at start-up.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ClientConfig is read by the terminal client.
type ClientConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Storage        StorageConfig `yaml:"storage"`
}

// StorageConfig selects where the client keeps its session and queued
// reports between runs.
type StorageConfig struct {
	Type          string `yaml:"type"` // "memory", "sqlite" or "redis"
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// Load reads the server configuration from a YAML file
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the configuration for the terminal client. A missing file
// is not an error; defaults and environment variables apply.
func LoadClient(configPath string) (*Config, error) {
	var cfg *Config
	if _, statErr := os.Stat(configPath); configPath == "" || os.IsNotExist(statErr) {
		_ = godotenv.Load()
		cfg = &Config{}
		cfg.overrideWithEnv()
	} else {
		var err error
		if cfg, err = read(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	return cfg, nil
}

func read(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_TYPE"); val != "" {
		c.Database.Type = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Admin
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Admin.Email = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" {
		c.Admin.Password = val
	}

	// Client
	if val := os.Getenv("SHAREBITE_API_URL"); val != "" {
		c.Client.BaseURL = val
	}
	if val := os.Getenv("SHAREBITE_STORAGE"); val != "" {
		c.Client.Storage.Type = val
	}
	if val := os.Getenv("SHAREBITE_STORAGE_PATH"); val != "" {
		c.Client.Storage.Path = val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Client.Storage.RedisAddr = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the server configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}

	c.Database.Type = strings.ToLower(c.Database.Type)
	switch c.Database.Type {
	case "":
		c.Database.Type = "memory"
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.Type == "memory" {
		c.Scheduler.Embedded = true
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 24 * 60
	}

	if c.Email.From == "" {
		c.Email.From = "noreply@sharebite.org"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Share a Bite"
	}
	if c.Email.QueueWorkers > 0 && c.Email.QueueSize == 0 {
		c.Email.QueueSize = 100
	}
	if c.Email.MaxRetries < 0 {
		return fmt.Errorf("email max_retries must not be negative")
	}

	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}
	if c.Admin.Name == "" {
		c.Admin.Name = "Platform Admin"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	// Scheduler defaults
	if c.Scheduler.ExpireFoodPosts == "" {
		c.Scheduler.ExpireFoodPosts = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.PendingVerificationDigest == "" {
		c.Scheduler.PendingVerificationDigest = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// ValidateClient checks the client section and fills in defaults
func (c *Config) ValidateClient() error {
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:5000/api"
	}
	c.Client.BaseURL = strings.TrimRight(c.Client.BaseURL, "/")
	if c.Client.TimeoutSeconds == 0 {
		c.Client.TimeoutSeconds = 10
	}

	s := &c.Client.Storage
	s.Type = strings.ToLower(s.Type)
	switch s.Type {
	case "":
		s.Type = "sqlite"
		fallthrough
	case "sqlite":
		if s.Path == "" {
			s.Path = "sharebite.db"
		}
	case "redis":
		if s.RedisAddr == "" {
			s.RedisAddr = "localhost:6379"
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage type: %s", s.Type)
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "sharebite:"
	}
	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
