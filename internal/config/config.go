package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/loykin/vrhook/internal/logger"
	"github.com/spf13/viper"
)

// Defaults reproduce the fixed behavior of vrhook when no config file is given.
const (
	DefaultAppKey        = "loykin.vrhook"
	DefaultManifest      = "app.vrmanifest"
	DefaultStartDir      = "start"
	DefaultStopDir       = "stop"
	DefaultPattern       = "*.cmd"
	DefaultRetryInterval = time.Second
	DefaultPollInterval  = time.Second
)

// DefaultProcessNames are the runtime server process names probed when a
// connection attempt fails.
var DefaultProcessNames = []string{"vrserver", "vrserver.exe", "vrmonitor", "vrmonitor.exe"}

// Config represents the top-level TOML structure.
type Config struct {
	AppKey        string        `toml:"app_key" mapstructure:"app_key"`
	Manifest      string        `toml:"manifest" mapstructure:"manifest"`
	StartDir      string        `toml:"start_dir" mapstructure:"start_dir"`
	StopDir       string        `toml:"stop_dir" mapstructure:"stop_dir"`
	Pattern       string        `toml:"pattern" mapstructure:"pattern"`
	RetryInterval time.Duration `toml:"retry_interval" mapstructure:"retry_interval"`
	PollInterval  time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`
	Runtime       RuntimeConfig `toml:"runtime" mapstructure:"runtime"`
	Log           LogConfig     `toml:"log" mapstructure:"log"`
	Metrics       MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

type RuntimeConfig struct {
	Library      string   `toml:"library" mapstructure:"library"`             // empty selects the platform default
	ProcessNames []string `toml:"process_names" mapstructure:"process_names"` // probed on connect failure
}

type LogConfig struct {
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
	Color      bool   `toml:"color" mapstructure:"color"`
	Level      string `toml:"level" mapstructure:"level"`
}

type MetricsConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"` // e.g. "127.0.0.1:9109"; empty disables
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_key", DefaultAppKey)
	v.SetDefault("manifest", DefaultManifest)
	v.SetDefault("start_dir", DefaultStartDir)
	v.SetDefault("stop_dir", DefaultStopDir)
	v.SetDefault("pattern", DefaultPattern)
	v.SetDefault("retry_interval", DefaultRetryInterval)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("runtime.library", "")
	v.SetDefault("runtime.process_names", DefaultProcessNames)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.color", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.listen", "")
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, _ := Load("")
	return cfg
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a run depends on.
func (c Config) Validate() error {
	if c.AppKey == "" {
		return fmt.Errorf("app_key must not be empty")
	}
	if c.Manifest == "" {
		return fmt.Errorf("manifest must not be empty")
	}
	if c.StartDir == "" || c.StopDir == "" {
		return fmt.Errorf("start_dir and stop_dir must not be empty")
	}
	if c.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry_interval must be positive, got %s", c.RetryInterval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// LoggerConfig converts the [log] section for logger.New.
func (c Config) LoggerConfig() logger.Config {
	return logger.Config{
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
		Color:      c.Log.Color,
		Level:      c.Log.Level,
	}
}
