package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
user_id: 7
interval: 5m
exchanges:
  - name: binance
    api_key: key
    api_secret: secret
database:
  driver: sqlite
  path: ./assets.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 7, cfg.UserID)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	require.Len(t, cfg.Exchanges, 1)
	assert.Equal(t, "binance", cfg.Exchanges[0].Name)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
exchanges:
  - name: coinex
    api_key: key
    api_secret: secret
database:
  driver: mysql
  host: 127.0.0.1
  name: assetwatch
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 1, cfg.UserID)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "env-key")
	t.Setenv("BYBIT_API_SECRET", "env-secret")

	path := writeConfig(t, `
exchanges:
  - name: bybit
database:
  driver: sqlite
  path: ./assets.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Exchanges[0].APIKey)
	assert.Equal(t, "env-secret", cfg.Exchanges[0].APISecret)
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "no exchanges",
			content: `
database:
  driver: sqlite
  path: ./assets.db
`,
			errMsg: "at least one exchange",
		},
		{
			name: "missing credentials",
			content: `
exchanges:
  - name: unknownex
database:
  driver: sqlite
  path: ./assets.db
`,
			errMsg: "no API credentials",
		},
		{
			name: "unknown driver",
			content: `
exchanges:
  - name: binance
    api_key: key
    api_secret: secret
database:
  driver: mongodb
`,
			errMsg: "unsupported database driver",
		},
		{
			name: "sqlite without path",
			content: `
exchanges:
  - name: binance
    api_key: key
    api_secret: secret
database:
  driver: sqlite
`,
			errMsg: "requires 'path'",
		},
		{
			name: "bad interval",
			content: `
interval: soon
exchanges:
  - name: binance
    api_key: key
    api_secret: secret
database:
  driver: sqlite
  path: ./assets.db
`,
			errMsg: "incorrect 'interval'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverMySQL,
		Host:     "db.local",
		Port:     3307,
		User:     "watch",
		Password: "pass",
		Name:     "assets",
	}
	assert.Equal(t, "watch:pass@tcp(db.local:3307)/assets?charset=utf8mb4&parseTime=true&loc=Local", d.DSN())
}
