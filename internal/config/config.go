package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Session     SessionConfig   `yaml:"session"`
	Auth        AuthConfig      `yaml:"auth"`
	OAuth       OAuthConfig     `yaml:"oauth"`
	Templates   TemplatesConfig `yaml:"templates"`
	Logging     LoggingConfig   `yaml:"logging"`
	Board       BoardConfig     `yaml:"board"`
	Environment string          `yaml:"environment" default:"local"` // local, dev, prod
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string `yaml:"host" default:"localhost"`
	Port        int    `yaml:"port" default:"8080"`
	MetricsPort int    `yaml:"metrics_port" default:"0"` // 0 serves /metrics on the main port
	StaticPath  string `yaml:"static_path" default:"web/static"`
}

// Address returns the listen address for the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" default:"postgres"` // postgres, sqlite
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"projectboard"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path" default:"projectboard.db"`
}

// SessionConfig holds cookie session configuration
type SessionConfig struct {
	Secret string `yaml:"secret"` // 32-byte base64-encoded
	Secure bool   `yaml:"secure"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`             // Secret key for signing JWTs
	Lifetime   time.Duration `yaml:"lifetime" default:"168h"` // Default 7 days
}

// OAuthConfig holds social login configuration
type OAuthConfig struct {
	Kakao KakaoConfig `yaml:"kakao"`
}

// KakaoConfig holds the Kakao OAuth2 client. Login with Kakao is disabled
// unless ClientID is set.
type KakaoConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	RedirectURI  string `yaml:"redirect_uri" default:"http://localhost:8080/oauth2/kakao/callback"`
}

// Enabled reports whether Kakao login is configured
func (k KakaoConfig) Enabled() bool {
	return k.ClientID != ""
}

// TemplatesConfig holds template loading configuration
type TemplatesConfig struct {
	Path string `yaml:"path" default:"web/templates"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // debug, info, warn, error
	Format string `yaml:"format" default:"json"` // json, text
	File   string `yaml:"file"`
}

// BoardConfig holds board presentation settings
type BoardConfig struct {
	PageSize int `yaml:"page_size" default:"10"`
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// DataSource returns the driver name and DSN for the configured database
func (d *DatabaseConfig) DataSource() (driver, dsn string) {
	if d.Driver == "sqlite" {
		return "sqlite", d.SQLite.Path
	}
	return "postgres", d.Postgres.ConnectionString()
}
