// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
	"github.com/amaumene/gomovies/pkg/logger"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.yaml"
	// Default env file name
	defaultEnvFile = ".env"
	// Default database path
	defaultDatabasePath = "./data/favorites.db"
)

// Config holds the application configuration.
// It supports loading from a YAML file, a .env file and environment variables.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Metadata API
	APIURL        string        `yaml:"api_url"`
	APITokenEnv   string        `yaml:"api_token_env"`
	APIToken      string        `yaml:"api_token"`
	AccountID     string        `yaml:"account_id"`
	APITimeout    time.Duration `yaml:"api_timeout"`
	Language      string        `yaml:"language"`
	DefaultRegion string        `yaml:"default_region"`

	// Home feed
	Genres          []constants.Genre `yaml:"genres"`
	RefreshInterval time.Duration     `yaml:"refresh_interval"`
	DiscoverSort    string            `yaml:"discover_sort"`

	// Search
	SearchDebounce time.Duration `yaml:"search_debounce"`

	// Storage settings
	DatabasePath     string `yaml:"database_path"`
	FavoritesBackend string `yaml:"favorites_backend"`
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	return &Config{
		Port:             constants.DefaultPort,
		LogLevel:         constants.DefaultLogLevel,
		APIURL:           constants.DefaultAPIURL,
		APITokenEnv:      constants.DefaultTokenEnv,
		APITimeout:       constants.APITimeout,
		Language:         constants.DefaultLanguage,
		DefaultRegion:    constants.DefaultRegion,
		Genres:           append([]constants.Genre(nil), constants.DefaultGenres...),
		RefreshInterval:  constants.RefreshInterval,
		DiscoverSort:     constants.DefaultDiscoverSort,
		SearchDebounce:   constants.SearchDebounce,
		DatabasePath:     defaultDatabasePath,
		FavoritesBackend: constants.DefaultFavoritesBackend,
	}
}

// Load reads configuration from a .env file, an optional YAML file and the environment.
// Environment variables take precedence over file values.
// Returns an error if the configuration is invalid.
func Load() (*Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigurationError("invalid config", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file, expanding ${VAR} references.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), c)
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.APIURL, "MOVIE_API_URL")
	setString(&c.AccountID, "MOVIE_ACCOUNT_ID")
	setString(&c.Language, "LANGUAGE")
	setString(&c.DefaultRegion, "DEFAULT_REGION")
	setString(&c.DiscoverSort, "DISCOVER_SORT")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.FavoritesBackend, "FAVORITES_BACKEND")

	for key, dst := range map[string]*time.Duration{
		"API_TIMEOUT":      &c.APITimeout,
		"REFRESH_INTERVAL": &c.RefreshInterval,
		"SEARCH_DEBOUNCE":  &c.SearchDebounce,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid.
// Sets default values for missing optional fields.
func (c *Config) Validate() error {
	defaults := Default()

	if c.Port == "" {
		c.Port = defaults.Port
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.APIURL == "" {
		c.APIURL = defaults.APIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.APITokenEnv == "" {
		c.APITokenEnv = defaults.APITokenEnv
	}
	if c.Language == "" {
		c.Language = defaults.Language
	}
	if c.DefaultRegion == "" {
		c.DefaultRegion = defaults.DefaultRegion
	}
	c.DefaultRegion = strings.ToUpper(c.DefaultRegion)
	if c.DiscoverSort == "" {
		c.DiscoverSort = defaults.DiscoverSort
	}
	if len(c.Genres) == 0 {
		c.Genres = defaults.Genres
	}
	seen := make(map[string]bool, len(c.Genres))
	for _, g := range c.Genres {
		if g.ID <= 0 || g.Key == "" {
			return fmt.Errorf("genre %q needs a positive id and a key", g.Title)
		}
		if seen[g.Key] {
			return fmt.Errorf("duplicate genre key %q", g.Key)
		}
		seen[g.Key] = true
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must not be negative")
	}

	if c.DatabasePath == "" {
		c.DatabasePath = defaults.DatabasePath
	}
	c.FavoritesBackend = strings.ToLower(c.FavoritesBackend)
	switch c.FavoritesBackend {
	case "":
		c.FavoritesBackend = defaults.FavoritesBackend
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown favorites backend %q", c.FavoritesBackend)
	}

	return nil
}

// TokenSource returns a function that reads the bearer token at call time.
// A token set in the config file wins over the environment variable.
func (c *Config) TokenSource() func() string {
	static := c.APIToken
	envKey := c.APITokenEnv
	return func() string {
		if static != "" {
			return static
		}
		return os.Getenv(envKey)
	}
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
