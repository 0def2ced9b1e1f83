// Package config loads meetapp settings from defaults, an optional YAML file
// and MEETAPP_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/meetapp/internal/dateformat"
)

const (
	EnvPrefix  = "MEETAPP"
	configName = ".meetapp"
)

// Config is the resolved application configuration.
type Config struct {
	APIURL      string        `mapstructure:"api_url" yaml:"api_url"`
	Token       string        `mapstructure:"token" yaml:"token"`
	UserID      int           `mapstructure:"user_id" yaml:"user_id"`
	PageSize    int           `mapstructure:"page_size" yaml:"page_size"`
	MinRecords  int           `mapstructure:"min_records" yaml:"min_records"`
	Locale      string        `mapstructure:"locale" yaml:"locale"`
	DatePattern string        `mapstructure:"date_pattern" yaml:"date_pattern"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	DataDir     string        `mapstructure:"data_dir" yaml:"data_dir"`
	Offline     bool          `mapstructure:"offline" yaml:"offline"`
	MetricsAddr string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Debug       bool          `mapstructure:"debug" yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:      "http://127.0.0.1:3333",
		UserID:      1,
		PageSize:    10,
		MinRecords:  5,
		Locale:      dateformat.DefaultLocale,
		DatePattern: dateformat.DefaultPattern,
		Timeout:     30 * time.Second,
		RateLimit:   4,
		DataDir:     "~/.meetapp",
	}
}

// New returns a viper instance with defaults, env binding and search paths
// set. Callers may bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("token", d.Token)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("min_records", d.MinRecords)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("date_pattern", d.DatePattern)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("offline", d.Offline)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("debug", d.Debug)

	v.SetConfigName(configName) // .yaml is implicit
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if override := os.Getenv("MEETAPP_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".meetapp"))
	}
	v.AddConfigPath(".")
	return v
}

// Load reads the config file if there is one and resolves the settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("expand data_dir: %w", err)
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if !c.Offline {
		u, err := url.Parse(c.APIURL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("api_url %q must be an absolute URL", c.APIURL)
		}
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MinRecords < 0 {
		return fmt.Errorf("min_records must not be negative, got %d", c.MinRecords)
	}
	if !dateformat.Supported(c.Locale) {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is empty")
	}
	return nil
}

// WriteDefault writes Default() as YAML to path. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
