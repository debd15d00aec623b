// Package config loads server configuration from an optional YAML file,
// a .env file and SEO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = "seo-backend.yaml"

// EnvPrefix prefixes every environment override, e.g. SEO_SERVER_PORT.
const EnvPrefix = "SEO"

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Security   SecurityConfig   `mapstructure:"security"`
	Advanced   AdvancedConfig   `mapstructure:"advanced"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	BindAddress    string `mapstructure:"bind_address"`
	EnableCORS     bool   `mapstructure:"enable_cors"`
	AllowOrigins   string `mapstructure:"allow_origins"`
	ReadTimeout    int    `mapstructure:"read_timeout_seconds"`
	WriteTimeout   int    `mapstructure:"write_timeout_seconds"`
	IdleTimeout    int    `mapstructure:"idle_timeout_seconds"`
	RequestTimeout int    `mapstructure:"request_timeout_seconds"` // per optimize/analyze request
	BodyLimit      string `mapstructure:"body_limit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory string `mapstructure:"data_directory"`
	TempDirectory string `mapstructure:"temp_directory"`
	DefaultsFile  string `mapstructure:"defaults_file"` // optional YAML overriding fallback business values
}

// ProcessingConfig contains optimization and analysis settings
type ProcessingConfig struct {
	MaxEntrySize           int64 `mapstructure:"max_entry_size"`
	DetectLanguage         bool  `mapstructure:"detect_language"`
	InternalLinks          bool  `mapstructure:"internal_links"`
	JobRetentionMinutes    int   `mapstructure:"job_retention_minutes"`
	CleanupIntervalMinutes int   `mapstructure:"cleanup_interval_minutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	ContactRatePerMinute int `mapstructure:"contact_rate_per_minute"`
	ContactBurst         int `mapstructure:"contact_burst"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `mapstructure:"log_level"`
	LogFormat            string `mapstructure:"log_format"`
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           8089,
			BindAddress:    "0.0.0.0",
			EnableCORS:     true,
			AllowOrigins:   "*",
			ReadTimeout:    60,
			WriteTimeout:   120,
			IdleTimeout:    120,
			RequestTimeout: 110,
			BodyLimit:      "100M",
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			TempDirectory: "./data/temp",
		},
		Processing: ProcessingConfig{
			MaxEntrySize:           50 << 20,
			DetectLanguage:         true,
			InternalLinks:          true,
			JobRetentionMinutes:    30,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			ContactRatePerMinute: 5,
			ContactBurst:         3,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "json",
			EnableRequestLogging: true,
		},
	}
}

// setDefaults registers every key with viper so environment variables can
// override values that are absent from the file.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.bind_address", d.Server.BindAddress)
	v.SetDefault("server.enable_cors", d.Server.EnableCORS)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout_seconds", d.Server.IdleTimeout)
	v.SetDefault("server.request_timeout_seconds", d.Server.RequestTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("storage.data_directory", d.Storage.DataDirectory)
	v.SetDefault("storage.temp_directory", d.Storage.TempDirectory)
	v.SetDefault("storage.defaults_file", d.Storage.DefaultsFile)

	v.SetDefault("processing.max_entry_size", d.Processing.MaxEntrySize)
	v.SetDefault("processing.detect_language", d.Processing.DetectLanguage)
	v.SetDefault("processing.internal_links", d.Processing.InternalLinks)
	v.SetDefault("processing.job_retention_minutes", d.Processing.JobRetentionMinutes)
	v.SetDefault("processing.cleanup_interval_minutes", d.Processing.CleanupIntervalMinutes)

	v.SetDefault("security.contact_rate_per_minute", d.Security.ContactRatePerMinute)
	v.SetDefault("security.contact_burst", d.Security.ContactBurst)

	v.SetDefault("advanced.log_level", d.Advanced.LogLevel)
	v.SetDefault("advanced.log_format", d.Advanced.LogFormat)
	v.SetDefault("advanced.enable_request_logging", d.Advanced.EnableRequestLogging)
}

// LoadConfig reads configuration. An empty configPath looks for FileName in
// the working directory; a missing file is not an error. A .env file next to
// the process is loaded first so its values act as environment overrides.
func LoadConfig(configPath string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case configPath != "" && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &AppConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.File = v.ConfigFileUsed()

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseDir := "."
	if config.File != "" {
		if _, err := os.Stat(config.File); err == nil {
			baseDir = filepath.Dir(config.File)
		} else {
			config.File = ""
		}
	}
	config.resolvePaths(baseDir)
	return config, nil
}

// applyEnvironmentOverrides honours the conventional unprefixed variables
// that hosting platforms set.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
}

// Validate rejects values the server cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Processing.MaxEntrySize <= 0 {
		return fmt.Errorf("processing.max_entry_size must be positive")
	}
	if c.Processing.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("processing.cleanup_interval_minutes must be positive, got %d", c.Processing.CleanupIntervalMinutes)
	}
	if c.Processing.JobRetentionMinutes <= 0 {
		return fmt.Errorf("processing.job_retention_minutes must be positive, got %d", c.Processing.JobRetentionMinutes)
	}
	switch strings.ToLower(c.Advanced.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Advanced.LogFormat)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		if abs, err := filepath.Abs(filepath.Join(configDir, p)); err == nil {
			return abs
		}
		return filepath.Join(configDir, p)
	}
	c.Storage.DataDirectory = resolve(c.Storage.DataDirectory)
	c.Storage.TempDirectory = resolve(c.Storage.TempDirectory)
	c.Storage.DefaultsFile = resolve(c.Storage.DefaultsFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AllowOrigins splits the comma separated origin list.
func (c *AppConfig) AllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
