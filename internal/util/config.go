// Package util provides common utilities for assetview.
package util

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Client settings
	APIURL         string        `mapstructure:"api_url"`
	PageLimit      int           `mapstructure:"page_limit"`
	SortDelay      time.Duration `mapstructure:"sort_delay"`
	SortLocale     string        `mapstructure:"sort_locale"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Backend settings
	ListenAddr     string   `mapstructure:"listen_addr"`
	DBPath         string   `mapstructure:"db_path"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".assetview")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "assetview.log"),

		APIURL:    "http://localhost:8080",
		PageLimit: 10,
		SortDelay: 1 * time.Second,
		// Locale used to collate hosts.
		SortLocale: "en",
		// Zero means no client timeout; requests wait as long as the server does.
		RequestTimeout: 0,

		ListenAddr:     ":8080",
		DBPath:         filepath.Join(dataDir, "assets.db"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// LoadConfig loads configuration from file, environment and bound flags.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(cfg.DataDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("assetview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults in viper
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("page_limit", cfg.PageLimit)
	v.SetDefault("sort_delay", cfg.SortDelay)
	v.SetDefault("sort_locale", cfg.SortLocale)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("allowed_origins", cfg.AllowedOrigins)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if c.PageLimit <= 0 {
		return fmt.Errorf("invalid page_limit %d: must be positive", c.PageLimit)
	}
	if c.SortDelay < 0 {
		return fmt.Errorf("invalid sort_delay %s: must not be negative", c.SortDelay)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid request_timeout %s: must not be negative", c.RequestTimeout)
	}
	if _, err := language.Parse(c.SortLocale); err != nil {
		return fmt.Errorf("invalid sort_locale %q: %w", c.SortLocale, err)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	return nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
