package main

import (
	"time"

	"github.com/doguaydn/microservices-e-commerce/services/common/config"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/sender"
)

type Config struct {
	Port string `env:"PORT" envDefault:"9095"`

	// RetryBackoff is the wait unit between send attempts.
	RetryBackoff time.Duration `env:"NOTIFY_RETRY_BACKOFF" envDefault:"1s"`

	config.Service
	SMTP     sender.SMTPConfig
	Postgres config.Postgres
	Bus      config.Bus
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
