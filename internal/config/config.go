// Package config loads the application configuration.
//
// Values come from three layers, later layers winning:
//  1. built-in defaults (koanf confmap provider),
//  2. a `.env` file in the working directory (godotenv autoload),
//  3. process environment variables prefixed with FORMAPP_.
//
// Nesting uses a double underscore, so FORMAPP_SERVER__PORT maps to
// server.port and ends up in Config.Server.Port. The result is validated
// with go-playground/validator so the process fails fast on bad config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process environment, if present.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix every configuration environment variable carries.
	EnvPrefix = "FORMAPP_"

	// ServiceName identifies this service in logs, traces and alert headers.
	ServiceName = "formapplication"
)

// Storage drivers accepted by DatabaseConfig.Driver.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration object.
//
// Observability is a pointer because it is optional; LoadConfig injects
// defaults when it is missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`

	// AppName prefixes the alert headers, e.g. X-formapplicationApp-alert.
	AppName string `koanf:"app_name" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig selects the storage driver and carries the connection
// parameters for each of them. Only the block for the selected driver is
// required.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver" validate:"required,oneof=mongodb postgres memory"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Postgres PostgresConfig `koanf:"postgres"`
}

// MongoConfig contains the MongoDB connection parameters.
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Name       string `koanf:"name"`
	Collection string `koanf:"collection"`
	// ConnectTimeout is in seconds.
	ConnectTimeout int `koanf:"connect_timeout"`
}

// PostgresConfig contains PostgreSQL connection parameters and pool tuning.
type PostgresConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details. Address is "host:port";
// an empty address disables Redis.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// RateLimitConfig controls the per-client request rate limiter.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`
}

// defaults are loaded before the environment so a bare environment only
// needs to override what differs.
func defaults() map[string]any {
	return map[string]any{
		"primary.env":      "local",
		"primary.app_name": ServiceName + "App",

		"server.port":                 "8080",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},

		"database.driver":                      DriverMongo,
		"database.mongo.uri":                   "mongodb://localhost:27017",
		"database.mongo.name":                  ServiceName,
		"database.mongo.collection":            "formv1",
		"database.mongo.connect_timeout":       10,
		"database.postgres.port":               5432,
		"database.postgres.ssl_mode":           "disable",
		"database.postgres.max_open_conns":     10,
		"database.postgres.max_idle_conns":     5,
		"database.postgres.conn_max_lifetime":  300,
		"database.postgres.conn_max_idle_time": 60,

		"rate_limit.enabled":             false,
		"rate_limit.requests_per_second": 20.0,
		"rate_limit.burst":               40,

		"observability.logging.level":                         "info",
		"observability.logging.format":                        "json",
		"observability.logging.slow_query_threshold":          "100ms",
		"observability.new_relic.license_key":                 "",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.new_relic.debug_logging":               false,
		"observability.health_checks.enabled":                 true,
		"observability.health_checks.interval":                "30s",
		"observability.health_checks.timeout":                 "5s",
		"observability.health_checks.checks":                  []string{"database", "redis"},
	}
}

// envKey maps FORMAPP_DATABASE__MONGO__URI to database.mongo.uri.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig builds the Config from defaults and the environment,
// validates it, and fills in observability defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate injects observability defaults, forces the service name and
// environment on them, then checks the struct tags, the block required by
// the selected driver and the observability rules.
func (c *Config) Validate() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Database.Driver {
	case DriverMongo:
		mongo := c.Database.Mongo
		if mongo.URI == "" || mongo.Name == "" || mongo.Collection == "" {
			return fmt.Errorf("database.mongo uri, name and collection are required for driver %q", DriverMongo)
		}
	case DriverPostgres:
		pg := c.Database.Postgres
		if pg.Host == "" || pg.Port == 0 || pg.User == "" || pg.Name == "" {
			return fmt.Errorf("database.postgres host, port, user and name are required for driver %q", DriverPostgres)
		}
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
