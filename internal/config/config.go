package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Lookup   LookupConfig
	Machines MachinesConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// LookupConfig points at the item-lookup service.
type LookupConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// MachinesConfig is the fixed keyword and size catalog.
type MachinesConfig struct {
	Keywords []string
	Initial  string
	Sizes    []string
}

// LogConfig controls the zap logger. Path "off" disables logging.
type LogConfig struct {
	Level string
	Path  string
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Lookup: LookupConfig{
			Endpoint: "http://localhost:4555/fetch_configuration_items",
			Timeout:  8 * time.Second,
		},
		Machines: MachinesConfig{
			Keywords: []string{"conveyor", "washer", "tipper"},
			Initial:  "conveyor",
			Sizes:    []string{"100mm", "200mm", "300mm"},
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(os.Getenv("HOME"), ".local", "state", "machineconfig", "machineconfig.log"),
		},
	}
}

// DefaultPath is where Load looks for config.toml when MACHINECONFIG_CONFIG is unset.
func DefaultPath() string {
	if p := os.Getenv("MACHINECONFIG_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "machineconfig", "config.toml")
}

// Load reads configuration from a .env file, config file and env. Env var overrides
// use prefix MACHINECONFIG_. path overrides the config file location when non-empty.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	d := Defaults()
	v := viper.New()
	v.SetDefault("lookup.endpoint", d.Lookup.Endpoint)
	v.SetDefault("lookup.timeout", d.Lookup.Timeout)
	v.SetDefault("machines.keywords", d.Machines.Keywords)
	v.SetDefault("machines.initial", d.Machines.Initial)
	v.SetDefault("machines.sizes", d.Machines.Sizes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("MACHINECONFIG_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "machineconfig"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MACHINECONFIG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			// no config file; defaults and env apply
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Machines.Keywords = splitList(c.Machines.Keywords)
	c.Machines.Sizes = splitList(c.Machines.Sizes)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the fields the app cannot start without.
func (c Config) Validate() error {
	u, err := url.Parse(c.Lookup.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("lookup.endpoint must be an absolute URL, got %q", c.Lookup.Endpoint)
	}
	if c.Lookup.Timeout <= 0 {
		return fmt.Errorf("lookup.timeout must be positive, got %s", c.Lookup.Timeout)
	}
	if len(c.Machines.Keywords) == 0 {
		return fmt.Errorf("machines.keywords must not be empty")
	}
	if c.Machines.Initial != "" {
		found := false
		for _, k := range c.Machines.Keywords {
			if strings.EqualFold(k, c.Machines.Initial) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("machines.initial %q is not in machines.keywords", c.Machines.Initial)
		}
	}
	return nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(cfg Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("lookup.endpoint", cfg.Lookup.Endpoint)
	v.Set("lookup.timeout", cfg.Lookup.Timeout.String())
	v.Set("machines.keywords", cfg.Machines.Keywords)
	v.Set("machines.initial", cfg.Machines.Initial)
	v.Set("machines.sizes", cfg.Machines.Sizes)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// splitList lets env vars carry comma-separated lists ("conveyor,washer").
func splitList(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
