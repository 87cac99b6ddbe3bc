// Package config holds the environment blocks every service shares. Each
// service embeds the blocks it needs in its own Config and calls Load.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/joho/godotenv"
)

// Service is common to every process.
type Service struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	JWTSecret       string        `env:"JWT_SECRET"`

	AWS                 awspkg.Settings
	UseSecrets          bool   `env:"AWS_USE_SECRETS"`
	CloudWatchEnabled   bool   `env:"CLOUDWATCH_ENABLED"`
	CloudWatchNamespace string `env:"CLOUDWATCH_NAMESPACE" envDefault:"NovaMart"`
	CloudWatchLogGroup  string `env:"CLOUDWATCH_LOG_GROUP" envDefault:"/novamart/services"`
}

type Postgres struct {
	Host       string `env:"POSTGRES_HOST" envDefault:"localhost" json:"POSTGRES_HOST"`
	Port       string `env:"POSTGRES_PORT" envDefault:"5432" json:"POSTGRES_PORT"`
	User       string `env:"POSTGRES_USER" json:"POSTGRES_USER"`
	Password   string `env:"POSTGRES_PASSWORD" json:"POSTGRES_PASSWORD"`
	DB         string `env:"POSTGRES_DB" json:"POSTGRES_DB"`
	SSLMode    string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	TimeZone   string `env:"POSTGRES_TIMEZONE" envDefault:"UTC"`
	SecretName string `env:"POSTGRES_SECRET_NAME"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DB, p.Port, p.SSLMode, p.TimeZone,
	)
}

func (p Postgres) Validate() error {
	if p.User == "" || p.Password == "" || p.DB == "" || p.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	return nil
}

// Cache selects the cache backend: "memory" or "redis".
type Cache struct {
	Driver   string `env:"CACHE_DRIVER" envDefault:"memory"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

type Bus = eventbus.Config

// Load reads an optional .env file then parses env tags into cfg.
func Load(cfg any) error {
	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyPostgresSecret overrides non-empty credential fields from a JSON
// secret keyed like the POSTGRES_* variables.
func ApplyPostgresSecret(ctx context.Context, secrets *awspkg.SecretsClient, p *Postgres) error {
	if p.SecretName == "" {
		return nil
	}
	var fromSecret Postgres
	if err := secrets.GetSecretJSON(ctx, p.SecretName, &fromSecret); err != nil {
		return err
	}
	mergePostgres(p, fromSecret)
	return nil
}

func mergePostgres(dst *Postgres, src Postgres) {
	if src.User != "" {
		dst.User = src.User
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
	if src.DB != "" {
		dst.DB = src.DB
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port != "" {
		dst.Port = src.Port
	}
}
