package main

import "github.com/doguaydn/microservices-e-commerce/services/common/config"

type Config struct {
	Port string `env:"PORT" envDefault:"9094"`

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
