package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the storefront service reads from the environment.
type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	MongoURI              string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase         string        `envconfig:"MONGO_DATABASE" default:"storefront"`
	MongoConnectTimeout   time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	MongoSelectionTimeout time.Duration `envconfig:"MONGO_SELECTION_TIMEOUT" default:"5s"`
	MongoMaxPoolSize      uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"64"`
	MongoMinPoolSize      uint64        `envconfig:"MONGO_MIN_POOL_SIZE" default:"4"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	// PaymentSecret is the merchant secret shared with the payment gateway,
	// used to verify payment signatures.
	PaymentSecret string `envconfig:"PAYMENT_SECRET" required:"true"`

	// AuthSecret signs bearer tokens carrying the buyer identity.
	AuthSecret string `envconfig:"AUTH_SECRET" required:"true"`

	// RevalidateSecret gates the manual cache revalidation endpoint.
	RevalidateSecret string `envconfig:"REVALIDATE_SECRET" required:"true"`

	OrderPrefix   string `envconfig:"ORDER_PREFIX" default:"ORD"`
	OperatorEmail string `envconfig:"OPERATOR_EMAIL" default:"orders@marketbay.local"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
