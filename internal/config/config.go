// Package config loads the service configuration from the environment.
//
// Variables are read with the GPTHUB_ prefix (optionally from a `.env` file),
// mapped onto the Config struct with koanf and checked with
// go-playground/validator so the process fails fast on missing values.
//
// Nesting is expressed with a double underscore:
//
//	GPTHUB_SERVER__PORT          -> server.port
//	GPTHUB_DATABASE__SSL_MODE    -> database.ssl_mode
//	GPTHUB_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "GPTHUB_"

// ServiceName tags logs, traces and New Relic data for this service.
const ServiceName = "gpthub"

// Config is the root configuration object.
//
// Observability is optional; defaults are used for anything not set.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Cache         CacheConfig          `koanf:"cache"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds the runtime environment name (local, development, production).
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// FormRateLimit is the number of form submissions per second allowed per
	// client IP on /api/newsletter and /api/contact. Zero disables the limiter.
	FormRateLimit float64 `koanf:"form_rate_limit" validate:"gte=0"`
	FormRateBurst int     `koanf:"form_rate_burst" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains the Redis address ("host:port") shared by the
// job queue and the directory cache.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores the Clerk secret key used to verify bearer tokens.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// IntegrationConfig holds third party credentials and addresses.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`

	// FromEmail is the sender address for outgoing mail.
	FromEmail string `koanf:"from_email" validate:"required,email"`

	// ContactInbox receives a notification for every contact submission.
	ContactInbox string `koanf:"contact_inbox" validate:"required,email"`
}

// CacheConfig tunes the Redis cache in front of the GPT directory.
type CacheConfig struct {
	GptListTTL time.Duration `koanf:"gpt_list_ttl"`
}

// DefaultGptListTTL is used when cache.gpt_list_ttl is not set.
const DefaultGptListTTL = 5 * time.Minute

// DSN builds the postgres:// connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	return buildDSN(d)
}

// LoadConfig reads the environment, unmarshals and validates it, and fills in
// defaults for optional blocks.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Defaults are decoded over, so a partially configured observability
	// block keeps sane values for the keys it leaves out.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Env values arrive as one string; "a,b" means two origins.
	mainConfig.Server.CORSAllowedOrigins = splitList(mainConfig.Server.CORSAllowedOrigins)
	mainConfig.Observability.HealthChecks.Checks = splitList(mainConfig.Observability.HealthChecks.Checks)

	// Service naming is fixed so dashboards stay consistent.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if mainConfig.Cache.GptListTTL <= 0 {
		mainConfig.Cache.GptListTTL = DefaultGptListTTL
	}

	return mainConfig, nil
}

// envKey maps GPTHUB_SERVER__PORT to server.port.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// buildDSN joins host and port (IPv6 safe) and URL-escapes the password.
func buildDSN(d DatabaseConfig) string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		d.SSLMode,
	)
}
