package main

import (
	"time"

	"github.com/doguaydn/microservices-e-commerce/services/common/config"
)

type Config struct {
	Port string `env:"PORT" envDefault:"9091"`

	StockServiceURL string        `env:"STOCK_SERVICE_URL" envDefault:"http://localhost:9093"`
	UserServiceURL  string        `env:"USER_SERVICE_URL" envDefault:"http://localhost:9092"`
	ClientTimeout   time.Duration `env:"CLIENT_TIMEOUT" envDefault:"5s"`

	// Rejects a second concurrent checkout for the same user.
	SerializeCheckout     bool `env:"CHECKOUT_SERIALIZE_PER_USER" envDefault:"false"`
	CheckoutRatePerMinute int  `env:"CHECKOUT_RATE_PER_MINUTE" envDefault:"30"`

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
