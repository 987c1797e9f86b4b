package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"./configs/development.yaml",
	"/etc/projectboard/config.yaml",
	"/etc/projectboard/config.yml",
}

// Defaults returns a configuration populated with default values only
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "localhost",
			Port:       8080,
			StaticPath: "web/static",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "projectboard",
				User:     "postgres",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{
				Path: "projectboard.db",
			},
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Lifetime: 168 * time.Hour,
			},
		},
		OAuth: OAuthConfig{
			Kakao: KakaoConfig{
				RedirectURI: "http://localhost:8080/oauth2/kakao/callback",
			},
		},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Board: BoardConfig{
			PageSize: 10,
		},
		Environment: "local",
	}
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := Defaults()

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		fmt.Fprintf(os.Stderr, "[CONFIG] Loading config from: %s\n", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	} else {
		fmt.Fprintf(os.Stderr, "[CONFIG] No config file found, using defaults\n")
	}

	applyEnvOverrides(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets the environment take precedence over the file
func applyEnvOverrides(config *Config) {
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}
	if key := os.Getenv("JWT_SIGNING_KEY"); key != "" {
		config.Auth.JWT.SigningKey = key
	}
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	switch config.Database.Driver {
	case "postgres":
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Database.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if config.Database.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	case "sqlite":
		if config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if config.Server.MetricsPort < 0 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port must be between 0 and 65535")
	}
	if config.Board.PageSize < 1 || config.Board.PageSize > 100 {
		return fmt.Errorf("board.page_size must be between 1 and 100")
	}
	if config.Auth.JWT.Lifetime <= 0 {
		return fmt.Errorf("auth.jwt.lifetime must be positive")
	}

	return nil
}
