// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	TenancySingle = "single"
	TenancyMulti  = "multi"

	BackendMemory   = "memory"
	BackendRabbitMQ = "rabbitmq"
	BackendNATS     = "nats"
)

type Config struct {
	Server struct {
		Port int `yaml:"port" env:"PORT"`
	} `yaml:"server"`

	Database struct {
		URL            string `yaml:"url" env:"DATABASE_URL"`
		SSLMode        string `yaml:"sslmode" env:"PGSSLMODE"`
		MigrateOnStart bool   `yaml:"migrate_on_start" env:"MIGRATE_ON_START"`
	} `yaml:"database"`

	Session struct {
		Secret string `yaml:"secret" env:"SECRET_KEY"`
	} `yaml:"session"`

	Tenancy struct {
		Mode string `yaml:"mode" env:"TENANCY_MODE"`
	} `yaml:"tenancy"`

	Notify struct {
		Backend string `yaml:"backend" env:"NOTIFY_BACKEND"`
		Buffer  int    `yaml:"buffer" env:"NOTIFY_BUFFER"`
	} `yaml:"notify"`

	RabbitMQ struct {
		URL      string `yaml:"url" env:"RABBITMQ_URL"`
		Exchange string `yaml:"exchange" env:"RABBITMQ_EXCHANGE"`
	} `yaml:"rabbitmq"`

	NATS struct {
		URL string `yaml:"url" env:"NATS_URL"`
	} `yaml:"nats"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Database.SSLMode = "require"
	cfg.Session.Secret = "change-me"
	cfg.Tenancy.Mode = TenancyMulti
	cfg.Notify.Backend = BackendMemory
	cfg.Notify.Buffer = 16
	cfg.RabbitMQ.Exchange = "booking_events"
	return cfg
}

// LoadConfig reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error; a missing DATABASE_URL is.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.Tenancy.Mode {
	case TenancySingle, TenancyMulti:
	default:
		return fmt.Errorf("unknown tenancy mode %q", c.Tenancy.Mode)
	}
	switch c.Notify.Backend {
	case BackendMemory:
	case BackendRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return errors.New("RABBITMQ_URL is required for the rabbitmq backend")
		}
	case BackendNATS:
		if c.NATS.URL == "" {
			return errors.New("NATS_URL is required for the nats backend")
		}
	default:
		return fmt.Errorf("unknown notify backend %q", c.Notify.Backend)
	}
	return nil
}

// MultiTenant reports whether requests are scoped by subdomain.
func (c *Config) MultiTenant() bool {
	return c.Tenancy.Mode == TenancyMulti
}

// DSN returns the database URL with sslmode applied, unless the URL already sets one.
func (c *Config) DSN() string {
	dsn := c.Database.URL
	if c.Database.SSLMode == "" || strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// key=value form
		return dsn + " sslmode=" + c.Database.SSLMode
	}
	q := u.Query()
	q.Set("sslmode", c.Database.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
