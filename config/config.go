package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultInterval = 60 * time.Second

// Database drivers supported by the history store.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ExchangeConfig identifies one exchange account to track.
type ExchangeConfig struct {
	Name      string `yaml:"name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// DatabaseConfig selects the history backend. Host/Port/User/Password/Name
// apply to mysql, Path applies to sqlite.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// DSN builds the mysql connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// LoggingConfig controls the console level and the optional rotating file sink.
type LoggingConfig struct {
	Level string         `yaml:"level"`
	File  FileSinkConfig `yaml:"file"`
}

type FileSinkConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type Config struct {
	UserID    int64
	Interval  time.Duration
	Exchanges []ExchangeConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
}

// FileConfig is the yaml shape of the config file; the interval is kept
// as a string ("60s", "5m") and parsed during Load.
type FileConfig struct {
	UserID    int64            `yaml:"user_id,omitempty"`
	Interval  string           `yaml:"interval,omitempty"`
	Exchanges []ExchangeConfig `yaml:"exchanges"`
	Database  DatabaseConfig   `yaml:"database"`
	Logging   LoggingConfig    `yaml:"logging,omitempty"`
}

// Load reads and validates the yaml config at path. API credentials left
// empty in the file are resolved from <NAME>_API_KEY / <NAME>_API_SECRET
// environment variables.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var raw FileConfig
	if err := yaml.Unmarshal(f, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Config{
		UserID:    raw.UserID,
		Interval:  defaultInterval,
		Exchanges: raw.Exchanges,
		Database:  raw.Database,
		Logging:   raw.Logging,
	}
	if cfg.UserID == 0 {
		cfg.UserID = 1
	}
	if raw.Interval != "" {
		cfg.Interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'interval' param in yaml config: %s, error: %w", raw.Interval, err)
		}
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("invalid 'interval' param: %s", cfg.Interval)
	}
	if len(cfg.Exchanges) == 0 {
		return Config{}, fmt.Errorf("at least one exchange must be configured")
	}

	for i := range cfg.Exchanges {
		ec := &cfg.Exchanges[i]
		if ec.Name == "" {
			return Config{}, fmt.Errorf("exchange #%d is missing 'name'", i)
		}
		prefix := strings.ToUpper(ec.Name)
		if ec.APIKey == "" {
			ec.APIKey = os.Getenv(prefix + "_API_KEY")
		}
		if ec.APISecret == "" {
			ec.APISecret = os.Getenv(prefix + "_API_SECRET")
		}
		if ec.APIKey == "" || ec.APISecret == "" {
			return Config{}, fmt.Errorf("no API credentials for exchange %q (set %s_API_KEY and %s_API_SECRET or put them in the config)",
				ec.Name, prefix, prefix)
		}
	}

	switch cfg.Database.Driver {
	case DriverMySQL:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return Config{}, fmt.Errorf("mysql database config requires 'host' and 'name'")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 3306
		}
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return Config{}, fmt.Errorf("sqlite database config requires 'path'")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	return cfg, nil
}
