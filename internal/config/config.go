package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/fault"
	"github.com/eliseohh/keralastatsbot/internal/places"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout is the DD-MM-YYYY form the statistics API expects.
const DateLayout = "02-01-2006"

const (
	defaultAPIURL     = "http://covid19-kerala-api.herokuapp.com/api/location"
	defaultDate       = "03-03-2020"
	defaultRedisURL   = "redis://127.0.0.1:6379/0"
	defaultSQLitePath = "./last_messages.db"
	defaultConfigPath = "config.yaml"

	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN not set")

// Config is built once at startup and passed explicitly; nothing reads it
// from package state afterwards.
type Config struct {
	Token string

	Places       places.Set
	StatsAPIURL  string
	StatsDate    string
	StatsTimeout time.Duration

	StoreDriver string
	RedisURL    string
	RedisPool   bool
	SQLitePath  string

	IsolateFailures bool
	LogLevel        string
	LogFormat       string

	date time.Time
}

type fileConfig struct {
	Places       []string `yaml:"places"`
	StatsAPIURL  string   `yaml:"stats_api_url"`
	StatsDate    string   `yaml:"stats_date"`
	StatsTimeout string   `yaml:"stats_timeout"`
	StoreDriver  string   `yaml:"store_driver"`
	RedisURL     string   `yaml:"redis_url"`
	SQLitePath   string   `yaml:"sqlite_path"`
}

// Load reads .env (if any), then CONFIG_PATH, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(getenv("CONFIG_PATH", defaultConfigPath))
}

// LoadFrom applies defaults, the YAML file at path (a missing file is fine),
// and environment overrides, in that order.
func LoadFrom(path string) (Config, error) {
	cfg := Config{
		Places:          places.New(places.Kerala...),
		StatsAPIURL:     defaultAPIURL,
		StatsDate:       defaultDate,
		StoreDriver:     DriverRedis,
		RedisURL:        defaultRedisURL,
		SQLitePath:      defaultSQLitePath,
		IsolateFailures: true,
		LogLevel:        "info",
		LogFormat:       "console",
	}

	if err := cfg.applyFile(path); err != nil {
		return cfg, err
	}

	cfg.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.StatsAPIURL = getenv("STATS_API_URL", cfg.StatsAPIURL)
	cfg.StatsDate = getenv("STATS_DATE", cfg.StatsDate)
	cfg.StoreDriver = strings.ToLower(getenv("STORE_DRIVER", cfg.StoreDriver))
	cfg.RedisURL = getenv("REDIS_URL", cfg.RedisURL)
	cfg.SQLitePath = getenv("SQLITE_PATH", cfg.SQLitePath)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.RedisPool, err = getenvBool("REDIS_POOL", false); err != nil {
		return cfg, err
	}
	if cfg.IsolateFailures, err = getenvBool("ISOLATE_FAILURES", cfg.IsolateFailures); err != nil {
		return cfg, err
	}

	if v := os.Getenv("STATS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid STATS_TIMEOUT %q: %w", v, err)
		}
		cfg.StatsTimeout = d
	}

	err = cfg.validate()
	return cfg, err
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if len(fc.Places) > 0 {
		c.Places = places.New(fc.Places...)
	}
	if fc.StatsAPIURL != "" {
		c.StatsAPIURL = fc.StatsAPIURL
	}
	if fc.StatsDate != "" {
		c.StatsDate = fc.StatsDate
	}
	if fc.StatsTimeout != "" {
		d, err := time.ParseDuration(fc.StatsTimeout)
		if err != nil {
			return fmt.Errorf("invalid stats_timeout %q: %w", fc.StatsTimeout, err)
		}
		c.StatsTimeout = d
	}
	if fc.StoreDriver != "" {
		c.StoreDriver = fc.StoreDriver
	}
	if fc.RedisURL != "" {
		c.RedisURL = fc.RedisURL
	}
	if fc.SQLitePath != "" {
		c.SQLitePath = fc.SQLitePath
	}
	return nil
}

func (c *Config) validate() error {
	date, err := time.ParseInLocation(DateLayout, c.StatsDate, time.UTC)
	if err != nil {
		return fault.New(fault.Date, "parse stats date", err)
	}
	c.date = date

	switch c.StoreDriver {
	case DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.Places.Len() == 0 {
		return errors.New("no recognized places configured")
	}

	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Date returns the fixed statistics date as UTC midnight.
func (c Config) Date() time.Time {
	return c.date
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// getenvBool returns def only when key is unset; a value ParseBool rejects
// is an error.
func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
