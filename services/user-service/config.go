package main

import "github.com/doguaydn/microservices-e-commerce/services/common/config"

type Config struct {
	Port string `env:"PORT" envDefault:"9092"`

	// Bootstrap administrator, created on startup when both are set.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"20"`

	config.Service
	Postgres config.Postgres
	Cache    config.Cache
	Bus      config.Bus
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
