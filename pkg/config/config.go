// Package config loads the surveyplot configuration file.
//
// The file is TOML and every key is optional; missing keys keep the values
// of [Default]. The default location follows the XDG convention:
//
//	$XDG_CONFIG_HOME/surveyplot/config.toml   (usually ~/.config/surveyplot/config.toml)
//
// Example:
//
//	[server]
//	addr = ":8080"
//
//	[export]
//	dir = "exports"
//	default_format = "pdf"
//
//	[retention]
//	sweep_days = 14
//
//	[upload]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "30m"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/palette"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

const (
	appName  = "surveyplot"
	fileName = "config.toml"
)

// Upload backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the complete configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Export    ExportConfig    `toml:"export"`
	Retention RetentionConfig `toml:"retention"`
	Upload    UploadConfig    `toml:"upload"`
	Render    RenderConfig    `toml:"render"`
}

// ServerConfig configures the web form.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	PreviewDPI     int    `toml:"preview_dpi"`
}

// ExportConfig configures the export folder and the preselected options.
type ExportConfig struct {
	Dir           string `toml:"dir"`
	DefaultFormat string `toml:"default_format"`
	DefaultDPI    int    `toml:"default_dpi"`
	Timestamp     bool   `toml:"timestamp"`
}

// RetentionConfig configures the cleanup of the export folder.
type RetentionConfig struct {
	SweepDays   int `toml:"sweep_days"`   // "Alte Exporte löschen" button
	StartupDays int `toml:"startup_days"` // Sweep when the server starts
}

// UploadConfig configures upload staging.
type UploadConfig struct {
	Backend       string   `toml:"backend"`
	Capacity      int      `toml:"capacity"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	MismatchPolicy string `toml:"mismatch_policy"`
	DefaultScheme  string `toml:"default_scheme"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
			PreviewDPI:     100,
		},
		Export: ExportConfig{
			Dir:           "exports",
			DefaultFormat: string(export.PNG),
			DefaultDPI:    export.DefaultDPI,
			Timestamp:     true,
		},
		Retention: RetentionConfig{
			SweepDays:   export.SweepDays,
			StartupDays: export.StartupDays,
		},
		Upload: UploadConfig{
			Backend:   BackendMemory,
			Capacity:  upload.DefaultCapacity,
			TTL:       Duration{upload.DefaultTTL},
			RedisAddr: "localhost:6379",
		},
		Render: RenderConfig{
			MismatchPolicy: string(dataset.DefaultMismatchPolicy),
			DefaultScheme:  string(palette.SchemeStandard),
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the file at path over the defaults and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value that has a restricted range.
func (c *Config) Validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_upload_bytes must be positive")
	}
	if err := errors.ValidateDPI(c.Server.PreviewDPI); err != nil {
		return err
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "export.dir is required")
	}
	opts := c.ExportOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := errors.ValidateRetentionDays(c.Retention.SweepDays); err != nil {
		return err
	}
	if err := errors.ValidateRetentionDays(c.Retention.StartupDays); err != nil {
		return err
	}

	switch c.Upload.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Upload.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "upload.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid upload.backend: %q (must be one of: memory, file, redis)", c.Upload.Backend)
	}
	if c.Upload.TTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "upload.ttl must be positive")
	}

	if _, err := dataset.ParseMismatchPolicy(c.Render.MismatchPolicy); err != nil {
		return err
	}
	_, err := palette.ParseScheme(c.Render.DefaultScheme)
	return err
}

// ExportOptions returns the preselected export options.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		Format:    export.Format(c.Export.DefaultFormat),
		DPI:       c.Export.DefaultDPI,
		Timestamp: c.Export.Timestamp,
	}
}
