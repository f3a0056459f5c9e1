// Package config provides the structures and loader for the application
// configuration. The config is read from a YAML file pointed to by the
// CONFIG_PATH environment variable, with environment overrides handled
// by cleanenv.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration shared by all binaries.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	JWTToken                `yaml:"jwttoken"`
	PayPal                  `yaml:"paypal"`
	GoogleOAuth             `yaml:"google_oauth"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer holds the listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds the redis client settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ holds the notification queue connection settings.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP holds the outbound mail transport settings used by the
// notification-sender binary.
type SMTP struct {
	SMTPHost     string `yaml:"host"`
	SMTPPort     int    `yaml:"port" env-default:"587"`
	SMTPUser     string `yaml:"username"`
	SMTPPassword string `yaml:"password"`
	SMTPFrom     string `yaml:"from" env-default:"TeamPlayMate <no-reply@teamplaymate.com>"`
}

// JWTToken holds the session token settings. Sessions live for seven days.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// PayPal holds the payment gateway credentials and redirect targets.
type PayPal struct {
	PayPalClientID  string `yaml:"client_id" env:"PAYPAL_CLIENT_ID"`
	PayPalSecret    string `yaml:"client_secret" env:"PAYPAL_CLIENT_SECRET"`
	PayPalAPIURL    string `yaml:"api_url" env-default:"https://api-m.sandbox.paypal.com"`
	SuccessURL      string `yaml:"success_url" env-default:"http://localhost:3000/payment-success"`
	CancelURL       string `yaml:"cancel_url" env-default:"http://localhost:3000/payment-cancel"`
	BrandName       string `yaml:"brand_name" env-default:"TeamPlayMate"`
	WebhookSecret   string `yaml:"webhook_secret" env:"PAYPAL_WEBHOOK_SECRET"`
}

// GoogleOAuth holds the OAuth client settings for Google login.
type GoogleOAuth struct {
	GoogleClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `yaml:"redirect_url" env-default:"http://localhost:8080/api/v1/auth/google/callback"`
}

// RateLimit holds the request throttling settings.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env-default:"10"`
	Burst             int     `yaml:"burst" env-default:"20"`
}

// MustLoad reads the config file named by CONFIG_PATH and exits the
// process on any failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// IsProd reports whether the app runs with the production profile.
// Session cookies are marked Secure and SameSite=None only in prod.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
