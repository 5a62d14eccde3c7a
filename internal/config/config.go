// Package config loads the pipeline configuration from a TOML file with
// environment-variable overrides, the store address and robot identity
// included. Nothing network-related is hardcoded anywhere else.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultStoreURL            = "http://localhost:7200/repositories/leolani"
	DefaultStoreTimeoutSeconds = 10
	DefaultRobotName           = "leolani"
	DefaultLogLevel            = "info"
)

// Config holds the application configuration.
type Config struct {
	StoreURL            string
	StoreTimeoutSeconds int
	RobotName           string
	LogLevel            string
	LogFile             string
	DBPath              string
	DataDir             string
	ConfigPath          string
}

type fileConfig struct {
	Store struct {
		URL            string `toml:"url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"store"`
	Robot struct {
		Name string `toml:"name"`
	} `toml:"robot"`
	Logging struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"logging"`
	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
}

// Load reads configuration from file, environment variables, and defaults,
// in that order of increasing precedence.
func Load() (*Config, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(dataDir, "config.toml")

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		StoreURL:            DefaultStoreURL,
		StoreTimeoutSeconds: DefaultStoreTimeoutSeconds,
		RobotName:           DefaultRobotName,
		LogLevel:            DefaultLogLevel,
		LogFile:             filepath.Join(dataDir, "logs", "leolani.log"),
		DBPath:              filepath.Join(dataDir, "leolani.sqlite3"),
		DataDir:             dataDir,
		ConfigPath:          configPath,
	}

	if _, err := os.Stat(configPath); err == nil {
		fileData, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		var parsed fileConfig
		if err := toml.Unmarshal(fileData, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		if parsed.Store.URL != "" {
			cfg.StoreURL = parsed.Store.URL
		}
		if parsed.Store.TimeoutSeconds > 0 {
			cfg.StoreTimeoutSeconds = parsed.Store.TimeoutSeconds
		}
		if parsed.Robot.Name != "" {
			cfg.RobotName = parsed.Robot.Name
		}
		if parsed.Logging.Level != "" {
			cfg.LogLevel = parsed.Logging.Level
		}
		if parsed.Logging.File != "" {
			cfg.LogFile = parsed.Logging.File
		}
		if parsed.DB.Path != "" {
			cfg.DBPath = parsed.DB.Path
		}
	}

	if v := os.Getenv("LEOLANI_STORE_URL"); v != "" {
		cfg.StoreURL = v
	}
	if v := os.Getenv("LEOLANI_STORE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StoreTimeoutSeconds = n
		}
	}
	if v := os.Getenv("LEOLANI_ROBOT_NAME"); v != "" {
		cfg.RobotName = v
	}
	if v := os.Getenv("LEOLANI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LEOLANI_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LEOLANI_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.StoreURL = strings.TrimRight(strings.TrimSpace(cfg.StoreURL), "/")
	return cfg, nil
}

func defaultDataDir() (string, error) {
	if dir := os.Getenv("LEOLANI_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".leolani"), nil
}

// Validate verifies the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return fmt.Errorf("store URL is empty")
	}
	if c.StoreTimeoutSeconds <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}
	if strings.TrimSpace(c.RobotName) == "" {
		return fmt.Errorf("robot name is empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}
