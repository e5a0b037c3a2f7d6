// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package config loads the service settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const dateLayout = "2006-01-02"

// dotenv is applied before reading the environment when it exists.
var dotenv = ".env"

type Config struct {
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" env-default:"wedding-admin"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	OTLPGRPC    string `yaml:"otlp_grpc" env:"OTLP_GRPC"`
	Database    string `yaml:"database" env:"DATABASE_URL" env-default:"kvdb://testdata/wedding.db"`

	HTTP    HTTPConfig    `yaml:"http"`
	Admin   AdminConfig   `yaml:"admin"`
	Wedding WeddingConfig `yaml:"wedding"`
	Mail    MailConfig    `yaml:"mail"`
	QR      QRConfig      `yaml:"qr"`
}

type HTTPConfig struct {
	Address      string   `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0:8080"`
	AllowOrigins []string `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-separator:","`
	// BaseURL is the public address guests reach, used for invite links.
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
}

type AdminConfig struct {
	User     string `yaml:"user" env:"PARTY_ADMIN" env-default:"admin"`
	Password string `yaml:"password" env:"PARTY_PASSWORD" env-default:"admin"`
}

type WeddingConfig struct {
	Date string `yaml:"date" env:"WEDDING_DATE" env-default:"2026-10-10"`
}

// Day returns the wedding date at local midnight.
func (w WeddingConfig) Day() (time.Time, error) {
	return time.ParseInLocation(dateLayout, w.Date, time.Local)
}

type MailConfig struct {
	Host        string        `yaml:"host" env:"SMTP_HOST"`
	Port        int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User        string        `yaml:"user" env:"SMTP_USER"`
	Password    string        `yaml:"password" env:"SMTP_PASS"`
	From        string        `yaml:"from" env:"SMTP_FROM"`
	ReplyTo     string        `yaml:"reply_to" env:"SMTP_TO"`
	DisplayName string        `yaml:"display_name" env:"SMTP_DISPLAY_NAME" env-default:"Tom & Sam"`
	TestTo      string        `yaml:"test_to" env:"SMTP_TEST_TO"`
	Timeout     time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"30s"`
	Workers     int           `yaml:"workers" env:"SMTP_WORKERS" env-default:"1"`
}

type QRConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"QR_TIMEOUT" env-default:"10s"`
	Workers int           `yaml:"workers" env:"QR_WORKERS" env-default:"1"`
}

// Load reads path when it is set, the environment otherwise. A .env file in
// the working directory is applied first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Wedding.Day(); err != nil {
		errs = append(errs, fmt.Errorf("wedding date %q: %w", c.Wedding.Date, err))
	}
	if c.Mail.Workers < 1 {
		errs = append(errs, fmt.Errorf("mail workers must be at least 1, got %d", c.Mail.Workers))
	}
	if c.QR.Workers < 1 {
		errs = append(errs, fmt.Errorf("qr workers must be at least 1, got %d", c.QR.Workers))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	return errors.Join(errs...)
}

// Path returns the config file named by CONFIG_PATH, if any.
func Path() string {
	return os.Getenv("CONFIG_PATH")
}
