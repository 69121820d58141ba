// Package config loads applogs configuration from defaults, an optional YAML
// file and APPLOGS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
)

const (
	// EnvPrefix prefixes every environment override, e.g. APPLOGS_LOGS_MAX_FILES.
	EnvPrefix = "APPLOGS"

	// DefaultConfigName is looked up in the working directory when no
	// explicit config file is given.
	DefaultConfigName = "applogs.yaml"
)

// Config is the complete applogs configuration.
type Config struct {
	Logs        LogsConfig        `yaml:"logs" mapstructure:"logs"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`

	// Path is the config file that was read, if any.
	Path string `yaml:"-" mapstructure:"-"`
}

// LogsConfig configures the log store.
type LogsConfig struct {
	Root             string        `yaml:"root" mapstructure:"root"`
	MaxFileSize      int64         `yaml:"max_file_size" mapstructure:"max_file_size"`
	MaxFiles         int           `yaml:"max_files" mapstructure:"max_files"`
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age"`
	SweepProbability float64       `yaml:"sweep_probability" mapstructure:"sweep_probability"`
	Encoding         string        `yaml:"encoding" mapstructure:"encoding"`
	CrossProcessLock bool          `yaml:"cross_process_lock" mapstructure:"cross_process_lock"`
}

// ServerConfig configures the HTTP surface and the server-side logger.
type ServerConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	LogLevel       string `yaml:"log_level" mapstructure:"log_level"`
	RequestLogging bool   `yaml:"request_logging" mapstructure:"request_logging"`
	CORSOrigin     string `yaml:"cors_origin" mapstructure:"cors_origin"`
}

// DiagnosticsConfig configures the store's own diagnostic log.
// An empty File means <logs.root>/applogs-diagnostics.log.
type DiagnosticsConfig struct {
	File      string `yaml:"file" mapstructure:"file"`
	Level     string `yaml:"level" mapstructure:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" mapstructure:"max_files"`
	Stderr    bool   `yaml:"stderr" mapstructure:"stderr"`
}

// NewConfig returns a Config with every default applied.
func NewConfig() *Config {
	return &Config{
		Logs: LogsConfig{
			Root:             logging.DefaultRoot,
			MaxFileSize:      logstore.DefaultMaxFileSize,
			MaxFiles:         logstore.DefaultMaxFiles,
			MaxAge:           logstore.DefaultMaxAge,
			SweepProbability: logstore.DefaultSweepProbability,
			Encoding:         logstore.DefaultEncoding,
			CrossProcessLock: false,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:5000",
			LogLevel:       "info",
			RequestLogging: false,
			CORSOrigin:     "http://localhost:5173",
		},
		Diagnostics: DiagnosticsConfig{
			File:      "",
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
			Stderr:    true,
		},
	}
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("logs.root", d.Logs.Root)
	v.SetDefault("logs.max_file_size", d.Logs.MaxFileSize)
	v.SetDefault("logs.max_files", d.Logs.MaxFiles)
	v.SetDefault("logs.max_age", d.Logs.MaxAge)
	v.SetDefault("logs.sweep_probability", d.Logs.SweepProbability)
	v.SetDefault("logs.encoding", d.Logs.Encoding)
	v.SetDefault("logs.cross_process_lock", d.Logs.CrossProcessLock)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.request_logging", d.Server.RequestLogging)
	v.SetDefault("server.cors_origin", d.Server.CORSOrigin)

	v.SetDefault("diagnostics.file", d.Diagnostics.File)
	v.SetDefault("diagnostics.level", d.Diagnostics.Level)
	v.SetDefault("diagnostics.max_size_mb", d.Diagnostics.MaxSizeMB)
	v.SetDefault("diagnostics.max_files", d.Diagnostics.MaxFiles)
	v.SetDefault("diagnostics.stderr", d.Diagnostics.Stderr)
}

// Load builds the configuration. Precedence, lowest first:
//  1. Defaults
//  2. The YAML file at path, or ./applogs.yaml when path is empty
//  3. APPLOGS_* environment variables (APPLOGS_SERVER_LOG_LEVEL, ...)
//
// An explicit path that does not exist is an error; a missing
// ./applogs.yaml is not.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeConfigNotFound, "config file not found", err).
				WithDetail("path", path)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || (!errors.As(err, &notFound) && !os.IsNotExist(err)) {
			return nil, apperrors.ConfigError("failed to parse config file", err).
				WithDetail("path", v.ConfigFileUsed())
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.ConfigError("failed to decode configuration", err)
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.Path = v.ConfigFileUsed()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "success": true, "warn": true,
	"warning": true, "error": true, "fatal": true, "none": true,
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.StoreConfig().Validate(); err != nil {
		return err
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid(fmt.Sprintf("server.addr must be host:port, got %q", c.Server.Addr))
	}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return invalid(fmt.Sprintf("server.log_level must be one of debug, info, success, warn, error, fatal, none; got %q", c.Server.LogLevel))
	}

	if c.Diagnostics.Level != "" && !validLevels[strings.ToLower(c.Diagnostics.Level)] {
		return invalid(fmt.Sprintf("diagnostics.level is not a known level: %q", c.Diagnostics.Level))
	}
	if c.Diagnostics.MaxSizeMB <= 0 {
		return invalid(fmt.Sprintf("diagnostics.max_size_mb must be positive, got %d", c.Diagnostics.MaxSizeMB))
	}
	if c.Diagnostics.MaxFiles <= 0 {
		return invalid(fmt.Sprintf("diagnostics.max_files must be positive, got %d", c.Diagnostics.MaxFiles))
	}
	return nil
}

func invalid(msg string) error {
	return apperrors.New(apperrors.ErrCodeConfigInvalid, msg, nil).
		WithSuggestion("Check applogs.yaml or the APPLOGS_* environment variables")
}

// StoreConfig converts the logs section into a logstore.Config.
func (c *Config) StoreConfig() logstore.Config {
	return logstore.Config{
		Root:             c.Logs.Root,
		MaxFileSize:      c.Logs.MaxFileSize,
		MaxFiles:         c.Logs.MaxFiles,
		MaxAge:           c.Logs.MaxAge,
		SweepProbability: c.Logs.SweepProbability,
		Encoding:         c.Logs.Encoding,
		CrossProcessLock: c.Logs.CrossProcessLock,
	}
}

// DiagnosticsLogging converts the diagnostics section into a logging.Config.
func (c *Config) DiagnosticsLogging() logging.Config {
	file := c.Diagnostics.File
	if file == "" {
		file = logging.DiagnosticsPath(c.Logs.Root)
	}
	return logging.Config{
		Level:         c.Diagnostics.Level,
		FilePath:      file,
		MaxSizeMB:     c.Diagnostics.MaxSizeMB,
		MaxFiles:      c.Diagnostics.MaxFiles,
		WriteToStderr: c.Diagnostics.Stderr,
	}
}

// WriteYAML writes the configuration to a YAML file, creating its directory.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// YAML renders the configuration as it would be written by WriteYAML.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
