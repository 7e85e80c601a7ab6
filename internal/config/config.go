package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Depot     DepotConfig     `yaml:"depot"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	SeedPath string `yaml:"seed_path"`
}

// DepotConfig is the warehouse coordinate used as the start of a new route.
type DepotConfig struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Rate limiting is disabled when Addr is empty.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	RateLimitRPS int    `yaml:"rate_limit_rps"`
}

// Events are only logged when Brokers is empty.
type MessagingConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Env:             "production",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "data/app.db",
			SeedPath: "data/seeds/seed.json",
		},
		Depot: DepotConfig{
			Lat: -17.393879,
			Lon: -66.156944,
		},
		Redis: RedisConfig{
			RateLimitRPS: 20,
		},
		Messaging: MessagingConfig{
			Topic: "dispatch.events",
		},
	}
}

// Load reads the YAML file at path over Defaults (a missing file is fine)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = Get("PORT", c.Server.Port)
	c.Server.Env = Get("APP_ENV", c.Server.Env)
	c.Database.Driver = Get("DB_DRIVER", c.Database.Driver)
	c.Database.URL = Get("DATABASE_URL", c.Database.URL)
	c.Database.Path = Get("DB_PATH", c.Database.Path)
	c.Database.SeedPath = Get("SEED_PATH", c.Database.SeedPath)
	c.Redis.Addr = Get("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = Get("REDIS_PASSWORD", c.Redis.Password)
	c.Messaging.Topic = Get("KAFKA_TOPIC", c.Messaging.Topic)

	if v := Get("KAFKA_BROKERS", ""); v != "" {
		c.Messaging.Brokers = splitList(v)
	}

	var err error
	if c.Depot.Lat, err = getFloat("DEPOT_LAT", c.Depot.Lat); err != nil {
		return err
	}
	if c.Depot.Lon, err = getFloat("DEPOT_LON", c.Depot.Lon); err != nil {
		return err
	}
	if c.Redis.DB, err = getInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Redis.RateLimitRPS, err = getInt("RATE_LIMIT_RPS", c.Redis.RateLimitRPS); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Depot.Lat < -90 || c.Depot.Lat > 90 || c.Depot.Lon < -180 || c.Depot.Lon > 180 {
		return fmt.Errorf("depot coordinate (%v, %v) is out of range", c.Depot.Lat, c.Depot.Lon)
	}
	if c.Redis.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.Redis.RateLimitRPS)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == "postgres" {
		return c.Database.URL
	}
	return c.Database.Path
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
