package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"portfolio/schema"
)

// FileName is the config file looked up in the data directory.
const FileName = "portfolio.yaml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: PORTFOLIO_STORAGE__DRIVER sets storage.driver.
const EnvPrefix = "PORTFOLIO_"

type Config struct {
	DataDir     string         `yaml:"data_dir" koanf:"data_dir"`
	ListenAddr  string         `yaml:"listen_addr" koanf:"listen_addr"`
	CORSOrigins []string       `yaml:"cors_origins" koanf:"cors_origins"`
	Log         LogConfig      `yaml:"log" koanf:"log"`
	Storage     StorageConfig  `yaml:"storage" koanf:"storage"`
	Session     SessionConfig  `yaml:"session" koanf:"session"`
	Site        schema.Profile `yaml:"site" koanf:"site"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" koanf:"driver"`
	SQLitePath    string `yaml:"sqlite_path,omitempty" koanf:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr,omitempty" koanf:"redis_addr"`
	RedisPassword string `yaml:"redis_password,omitempty" koanf:"redis_password"`
	RedisDB       int    `yaml:"redis_db,omitempty" koanf:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix,omitempty" koanf:"redis_prefix"`
}

type SessionConfig struct {
	PendingTTL   string `yaml:"pending_ttl" koanf:"pending_ttl"`     // Go duration, e.g. "2m"
	PingInterval string `yaml:"ping_interval" koanf:"ping_interval"` // Go duration, e.g. "30s"
}

func Default() Config {
	return Config{
		DataDir:    ".",
		ListenAddr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "portfolio.db",
		},
		Session: SessionConfig{
			PendingTTL:   "2m",
			PingInterval: "30s",
		},
		Site: schema.DefaultProfile(),
	}
}

// Load reads FileName from dataDir when present, then applies environment
// overrides on top of the defaults.
func Load(dataDir string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	cfgPath := filepath.Join(dataDir, FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("access config %s: %w", cfgPath, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("load env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// listKeys are the list settings that environment variables set as
// comma-separated values.
var listKeys = map[string]bool{
	"cors_origins":            true,
	"site.person.same_as":     true,
	"site.person.knows_about": true,
}

// envValue maps PORTFOLIO_STORAGE__DRIVER to storage.driver and splits list
// settings on commas.
func envValue(name, value string) (string, interface{}) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Save writes cfg to FileName in cfg.DataDir, replacing any existing file
// atomically.
func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, FileName)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := cfgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, cfgPath)
}

var validDrivers = map[string]bool{
	"memory": true,
	"sqlite": true,
	"redis":  true,
}

// Validate checks that cfg is usable.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if !validDrivers[c.Storage.Driver] {
		return fmt.Errorf("invalid storage driver %q: must be one of memory, sqlite, redis", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.SQLitePath == "" {
		return errors.New("storage.sqlite_path is required for the sqlite driver")
	}
	if c.Storage.Driver == "redis" && c.Storage.RedisAddr == "" {
		return errors.New("storage.redis_addr is required for the redis driver")
	}
	if _, err := c.PendingTTL(); err != nil {
		return err
	}
	if _, err := c.PingInterval(); err != nil {
		return err
	}
	if c.Site.URL == "" {
		return errors.New("site.url is required")
	}
	return nil
}

// SQLitePath resolves the database path against the data directory.
func (c Config) SQLitePath() string {
	p := c.Storage.SQLitePath
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// PendingTTL is how long a rendered page waits for its websocket.
func (c Config) PendingTTL() (time.Duration, error) {
	return parsePositive("session.pending_ttl", c.Session.PendingTTL)
}

// PingInterval is the websocket keepalive period.
func (c Config) PingInterval() (time.Duration, error) {
	return parsePositive("session.ping_interval", c.Session.PingInterval)
}

func parsePositive(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, v)
	}
	return d, nil
}
