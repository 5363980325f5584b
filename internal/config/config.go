package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	API         struct {
		BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
		Timeout int    `env:"TIMEOUT" envDefault:"10"`
	} `envPrefix:"API_"`
	Session struct {
		Token string `env:"TOKEN"`
	} `envPrefix:"SESSION_"`
	Staging struct {
		Backend          string `env:"BACKEND" envDefault:"sqlite"`
		Path             string `env:"PATH" envDefault:"shift-manager.sqlite"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"STAGING_"`
	Redis struct {
		Host      string `env:"HOST" envDefault:"localhost"`
		Port      int    `env:"PORT" envDefault:"6379"`
		Password  string `env:"PASSWORD"`
		DB        int    `env:"DB" envDefault:"0"`
		KeyPrefix string `env:"KEY_PREFIX" envDefault:"shift_manager_staging"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"notification_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		To   string `env:"TO"`
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	Log struct {
		Level string `env:"LEVEL" envDefault:"info"`
	} `envPrefix:"LOG_"`
	Calendar struct {
		// 为空时使用本机时区
		Timezone string `env:"TIMEZONE"`
	} `envPrefix:"CALENDAR_"`

	location *time.Location
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Staging.Backend != "sqlite" && cfg.Staging.Backend != "redis" {
		return nil, errors.New("STAGING_BACKEND 只能是 sqlite 或 redis")
	}

	if cfg.Calendar.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Calendar.Timezone)
		if err != nil {
			return nil, fmt.Errorf("CALENDAR_TIMEZONE 无效: %w", err)
		}
		cfg.location = loc
	}

	return cfg, nil
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location 返回判断日历日期使用的时区
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
