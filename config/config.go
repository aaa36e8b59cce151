package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	Archive  ArchiveConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"wildfund"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	DBName          string        `env:"DB_NAME" envDefault:"wildfund"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type StripeConfig struct {
	SecretKey        string        `env:"STRIPE_SECRET_KEY"`
	WebhookSecret    string        `env:"STRIPE_WEBHOOK_SECRET"`
	WebhookTolerance time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" envDefault:"5m"`
	APITimeout       time.Duration `env:"STRIPE_API_TIMEOUT" envDefault:"10s"`
	SuccessURL       string        `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:3000/donations/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL        string        `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:3000/donations/cancel"`
	Currency         string        `env:"STRIPE_CURRENCY" envDefault:"usd"`
}

type CheckoutConfig struct {
	MinimumAmount    int64 `env:"CHECKOUT_MIN_AMOUNT" envDefault:"100"`
	AllowAnonymous   bool  `env:"CHECKOUT_ALLOW_ANONYMOUS" envDefault:"false"`
	DescriptionLimit int   `env:"CHECKOUT_DESCRIPTION_LIMIT" envDefault:"120"`
}

type KafkaConfig struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	Topic            string `env:"KAFKA_TOPIC" envDefault:"donation_events"`
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     string        `env:"SMTP_PORT" envDefault:"587"`
	User     string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"MAIL_FROM"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
}

type ArchiveConfig struct {
	Bucket string `env:"ARCHIVE_S3_BUCKET"`
	Prefix string `env:"ARCHIVE_S3_PREFIX" envDefault:"stripe-events"`
	Region string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("falha ao ler configuracao do ambiente: %w", err)
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.DBName,
			cfg.Database.SSLMode,
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.App.Environment == "test" {
		return nil
	}
	if c.Stripe.SecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY e obrigatorio")
	}
	if c.Stripe.WebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET e obrigatorio")
	}
	if c.Checkout.MinimumAmount < 1 {
		return errors.New("CHECKOUT_MIN_AMOUNT deve ser maior que zero")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) KafkaEnabled() bool {
	return c.Kafka.BootstrapServers != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}
