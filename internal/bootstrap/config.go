package bootstrap

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
)

// Config is the top level configuration struct for the entire application,
// bound from environment variables the way components/crm/internal/bootstrap
// binds its own Config with `env:"..."` tags.
type Config struct {
	EnvName       string `env:"ENV_NAME"`
	ServerAddress string `env:"SERVER_ADDRESS"`
	LogLevel      string `env:"LOG_LEVEL"`

	MongoURI        string `env:"MONGO_URI"`
	MongoDBName     string `env:"MONGO_DB_NAME"`
	GuildMongoURI   string `env:"GUILD_MONGO_URI"`
	GuildMongoDBName string `env:"GUILD_MONGO_DB_NAME"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE"`

	InternalIssuer   string `env:"INTERNAL_ISSUER"`
	InternalAudience string `env:"INTERNAL_AUDIENCE"`
	InternalSecret   string `env:"INTERNAL_HMAC_SECRET"`

	ExternalProviderName string `env:"EXTERNAL_PROVIDER_NAME"`
	ExternalJWKSURL      string `env:"EXTERNAL_JWKS_URL"`
	ExternalIssuer       string `env:"EXTERNAL_ISSUER"`
	ExternalAudience     string `env:"EXTERNAL_AUDIENCE"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	MailerEndpoint string `env:"MAILER_ENDPOINT"`

	PaymentSecret       string `env:"PAYMENT_SECRET"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`

	APIKey string `env:"PUBLIC_API_KEY"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Options contains optional dependencies a caller (typically a test) can
// inject instead of letting InitServersWithOptions build them from Config.
type Options struct {
	Logger logging.Logger
}

// LoadConfig populates cfg from the environment; the entrypoint's only call
// into this package before InitServersWithOptions.
func LoadConfig(cfg *Config) error {
	return loadConfigFromEnv(cfg)
}

// loadConfigFromEnv mirrors libCommons.SetConfigFromEnvVars: it walks the
// struct's `env` tags and populates each field from the environment,
// applying a couple of hardcoded defaults for local/dev runs.
func loadConfigFromEnv(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("env")
		if tag == "" {
			continue
		}

		raw, ok := os.LookupEnv(tag)
		if !ok {
			continue
		}

		fv := v.Field(i)

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Int, reflect.Int64:
			if field.Type == reflect.TypeOf(time.Duration(0)) {
				d, err := time.ParseDuration(raw)
				if err != nil {
					return fmt.Errorf("parse duration for %s: %w", tag, err)
				}

				fv.Set(reflect.ValueOf(d))

				continue
			}

			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("parse int for %s: %w", tag, err)
			}

			fv.SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("parse bool for %s: %w", tag, err)
			}

			fv.SetBool(b)
		}
	}

	applyDefaults(cfg)

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.EnvName == "" {
		cfg.EnvName = "development"
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = ":8080"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "questbound"
	}

	if cfg.GuildMongoDBName == "" {
		cfg.GuildMongoDBName = "questbound_guildchat"
	}

	if cfg.InternalIssuer == "" {
		cfg.InternalIssuer = "questbound-internal"
	}

	if cfg.InternalAudience == "" {
		cfg.InternalAudience = "questbound-api"
	}

	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	if cfg.RabbitMQExchange == "" {
		cfg.RabbitMQExchange = "guild_chat"
	}
}

// mockPaymentMode reports whether the payment gateway should run in mock
// mode, gated on the absence of a real secret per §9's Design Notes, not on
// EnvName.
func (c *Config) mockPaymentMode() bool {
	return strings.TrimSpace(c.PaymentSecret) == ""
}
