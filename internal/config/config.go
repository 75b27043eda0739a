package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	envPrefix = "WELLTREND"

	keyExternalEnabled = "external_store.enabled"
)

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	ExternalStore ExternalStoreConfig `mapstructure:"external_store"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Log           LogConfig           `mapstructure:"log"`
	Downtime      DowntimeConfig      `mapstructure:"downtime"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ExternalStoreConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Token    string `mapstructure:"token"`
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

// Configured reports whether enough is set to build an external store client.
func (c ExternalStoreConfig) Configured() bool {
	return c.Host != "" && c.Database != ""
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity uint64        `mapstructure:"capacity"`
	Version  string        `mapstructure:"version"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DowntimeConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

// Source owns the viper instance and serves the values that must be read on
// every call.
type Source struct {
	mu  sync.Mutex
	v   *viper.Viper
	log *slog.Logger

	externalEnabled atomic.Bool
}

// Load reads path (optional; a missing file leaves defaults and environment).
func Load(path string, log *slog.Logger) (*Source, *Config, error) {
	if log == nil {
		return nil, nil, errors.New("logger is required")
	}
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	s := &Source{v: v, log: log}
	cfg, err := s.read(path != "")
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "./welltrend.sqlite")
	v.SetDefault(keyExternalEnabled, false)
	v.SetDefault("external_store.host", "")
	v.SetDefault("external_store.token", "")
	v.SetDefault("external_store.database", "")
	v.SetDefault("external_store.table", "trend_points")
	v.SetDefault("cache.ttl", 0)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.version", "v1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("downtime.window_days", 7)
}

func (s *Source) read(fromFile bool) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fromFile {
		if err := s.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			s.log.Debug("config file not found, using defaults")
		}
	}
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.externalEnabled.Store(s.v.GetBool(keyExternalEnabled))
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if c.Downtime.WindowDays <= 0 {
		return errors.New("downtime.window_days must be positive")
	}
	return nil
}

// Reload re-reads the config file and refreshes per-call values.
func (s *Source) Reload() (*Config, error) {
	return s.read(s.v.ConfigFileUsed() != "")
}

// Watch reloads on every change of the config file.
func (s *Source) Watch() {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		s.externalEnabled.Store(s.v.GetBool(keyExternalEnabled))
		s.log.Info("config reloaded", "file", e.Name, "external_store_enabled", s.externalEnabled.Load())
	})
	s.v.WatchConfig()
}

// ExternalStoreEnabled reports the current value of the external store flag.
// It reflects the latest reload, not the value at startup.
func (s *Source) ExternalStoreEnabled() bool {
	return s.externalEnabled.Load()
}

// SetExternalStoreEnabled overrides the flag until the next reload.
func (s *Source) SetExternalStoreEnabled(enabled bool) {
	s.externalEnabled.Store(enabled)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || strings.Contains(err.Error(), "no such file or directory")
}
