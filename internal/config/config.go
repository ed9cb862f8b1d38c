package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Uploads  UploadsConfig  `json:"uploads"`
	Cleanup  CleanupConfig  `json:"cleanup"`
	Logging  LoggingConfig  `json:"logging"`
	Defaults DefaultsConfig `json:"defaults"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// UploadsConfig holds file upload settings
type UploadsConfig struct {
	Dir           string `json:"dir"`
	MaxImageBytes int64  `json:"max_image_bytes"`
	MaxProofBytes int64  `json:"max_proof_bytes"`
	MaxImages     int    `json:"max_images"`
}

// CleanupConfig controls the stale-item cleanup worker
type CleanupConfig struct {
	Schedule      string `json:"schedule"`
	RetentionDays int    `json:"retention_days"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// DefaultsConfig carries the category and location lists offered to clients
// before any items exist. Injected at startup, not package globals.
type DefaultsConfig struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "lostfound",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Dir:           "uploads",
			MaxImageBytes: 5 << 20,
			MaxProofBytes: 10 << 20,
			MaxImages:     5,
		},
		Cleanup: CleanupConfig{
			Schedule:      "0 3 * * *",
			RetentionDays: 90,
		},
		Defaults: DefaultsConfig{
			Categories: []string{
				"electronics", "documents", "keys", "wallets", "bags",
				"clothing", "books", "accessories", "other",
			},
			Locations: []string{
				"library", "cafeteria", "gym", "lecture halls",
				"dormitories", "parking lot", "sports field", "other",
			},
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		config.Uploads.Dir = dir
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
