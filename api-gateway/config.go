package main

import (
	"time"

	"github.com/doguaydn/microservices-e-commerce/services/common/config"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	BasketServiceURL       string        `env:"BASKET_SERVICE_URL" envDefault:"http://localhost:9091"`
	UserServiceURL         string        `env:"USER_SERVICE_URL" envDefault:"http://localhost:9092"`
	StockServiceURL        string        `env:"STOCK_SERVICE_URL" envDefault:"http://localhost:9093"`
	InvoiceServiceURL      string        `env:"INVOICE_SERVICE_URL" envDefault:"http://localhost:9094"`
	NotificationServiceURL string        `env:"NOTIFICATION_SERVICE_URL" envDefault:"http://localhost:9095"`
	UpstreamTimeout        time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	config.Service
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
