package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Import   ImportConfig   `mapstructure:"import"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SheetConfig points at the published spreadsheet export.
type SheetConfig struct {
	URL      string        `mapstructure:"url"`
	Format   string        `mapstructure:"format"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ImportConfig holds merge defaults applied to every import.
type ImportConfig struct {
	OverrideExamples bool     `mapstructure:"override_examples"`
	AutoExamples     bool     `mapstructure:"auto_examples"`
	DefaultThemes    []string `mapstructure:"default_themes"`
}

type QuizConfig struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

// DatasetConfig locates the bundled dataset used to seed an empty database.
type DatasetConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.path", "wordgym.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "wordgym")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.log_sql", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Sheet defaults
	viper.SetDefault("sheet.url", "")
	viper.SetDefault("sheet.format", "")
	viper.SetDefault("sheet.timeout", 15*time.Second)
	viper.SetDefault("sheet.cache_ttl", 10*time.Minute)

	viper.SetDefault("import.override_examples", false)
	viper.SetDefault("import.auto_examples", true)
	viper.SetDefault("import.default_themes", []string{})

	viper.SetDefault("quiz.history_limit", 50)
	viper.SetDefault("dataset.seed_path", "")
}

// DatabaseDriver returns the canonical database/sql driver name.
func (c *Config) DatabaseDriver() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "", "sqlite", "sqlite3":
		return "sqlite3", nil
	case "postgres", "postgresql", "pgx":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the connection string for the configured driver.
func (c *Config) DatabaseURL() (string, error) {
	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite3" {
		path := c.Database.Path
		if path == "" {
			path = "wordgym.db"
		}
		if path == ":memory:" {
			return "file::memory:?cache=shared&_fk=1", nil
		}
		return fmt.Sprintf("file:%s?cache=shared&_fk=1", path), nil
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String(), nil
}

// HistoryLimit is the quiz history cap, never below 1.
func (c *Config) HistoryLimit() int {
	if c.Quiz.HistoryLimit < 1 {
		return 50
	}
	return c.Quiz.HistoryLimit
}
