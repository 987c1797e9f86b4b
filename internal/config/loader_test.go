package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: sqlite
  sqlite:
    path: /tmp/board.db
auth:
  jwt:
    lifetime: 2h
board:
  page_size: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWT.Lifetime)
	assert.Equal(t, 20, cfg.Board.PageSize)

	driver, dsn := cfg.Database.DataSource()
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "/tmp/board.db", dsn)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("BOARD_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  postgres:
    password: ${BOARD_DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Contains(t, cfg.Database.Postgres.ConnectionString(), "password=s3cret")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SESSION_SECRET", "c2VjcmV0")
	path := writeConfig(t, "database:\n  driver: postgres\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "c2VjcmV0", cfg.Session.Secret)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "page size too large", mutate: func(c *Config) { c.Board.PageSize = 101 }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.Database.Driver = "sqlite"
			c.Database.SQLite.Path = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv("KAKAO_CLIENT_ID", "")
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 168*time.Hour, cfg.Auth.JWT.Lifetime)
	assert.False(t, cfg.OAuth.Kakao.Enabled())
	assert.Equal(t, 10, cfg.Board.PageSize)
}
