package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fern-api"`
	Host                          string   `env:"HOST" env-default:"0.0.0.0"`
	Port                          int      `env:"PORT" env-default:"8080" validate:"min=1,max=65535"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	ShutdownTimeoutSeconds        int      `env:"HTTP_SERVER_SHUTDOWN_TIMEOUT_SECONDS" env-default:"15"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5" validate:"min=1"`

	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"sqlserver" validate:"oneof=sqlserver postgres sqlite"`
	// Database host
	DatabaseHost string `env:"DB_HOST" validate:"required_unless=DatabaseDriver sqlite"`
	// Database port
	DatabasePort int `env:"DB_PORT" env-default:"1433"`
	// Database name, or the file path for sqlite
	DatabaseName string `env:"DB_NAME" validate:"required"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" validate:"required_unless=DatabaseDriver sqlite"`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" validate:"required_unless=DatabaseDriver sqlite"`
	// Schema the catalog tables live in
	DatabaseSchema string `env:"DB_SCHEMA" env-default:"dbo"`
	// Encrypt the connection
	DatabaseEncrypt bool `env:"DB_ENCRYPT" env-default:"true"`
	// Accept the server certificate without verification
	DatabaseTrustServerCertificate bool `env:"DB_TRUST_SERVER_CERTIFICATE" env-default:"true"`
	// Connection Timeout
	DatabaseConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" env-default:"30s"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	// Conn Max Idle Time
	DatabaseConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" env-default:"1m"`

	// Number of catalog tables fetched at once
	FetchConcurrency int `env:"FETCH_CONCURRENCY" env-default:"6" validate:"min=1"`

	// Redis snapshot cache, disabled when host is empty
	RedisHost     string        `env:"REDIS_HOST"`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"30s"`

	// Tracing
	TracingEnabled     bool          `env:"TRACING_ENABLED" env-default:"false"`
	TracingExporter    string        `env:"TRACING_EXPORTER" env-default:"otlp" validate:"oneof=otlp console"`
	TracingEndpoint    string        `env:"TRACING_ENDPOINT" env-default:"localhost:4317"`
	TracingProtocol    string        `env:"TRACING_PROTOCOL" env-default:"grpc" validate:"oneof=grpc http"`
	TracingInsecure    bool          `env:"TRACING_INSECURE" env-default:"true"`
	TracingTimeout     time.Duration `env:"TRACING_TIMEOUT" env-default:"10s"`
	TracingSampleRatio float64       `env:"TRACING_SAMPLE_RATIO" env-default:"1" validate:"min=0,max=1"`
}

// Load reads an optional .env file, parses the environment and validates the result.
// Variables already set in the environment take precedence over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CatalogSchema is the schema the catalog tables are read from. SQLite databases
// have no user schemas, so the setting is ignored there.
func (c Config) CatalogSchema() string {
	if c.DatabaseDriver == "sqlite" {
		return ""
	}
	return c.DatabaseSchema
}

func (c Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

// DataSourceName builds the connection string for the configured driver.
func (c Config) DataSourceName() string {
	switch c.DatabaseDriver {
	case "sqlite":
		return c.DatabaseName
	case "postgres":
		sslmode := "disable"
		if c.DatabaseEncrypt {
			sslmode = "require"
			if !c.DatabaseTrustServerCertificate {
				sslmode = "verify-full"
			}
		}
		query := url.Values{}
		query.Set("sslmode", sslmode)
		query.Set("connect_timeout", strconv.Itoa(int(c.DatabaseConnectionTimeout.Seconds())))
		query.Set("application_name", c.AppName)
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DatabaseUserName, c.DatabasePassword),
			Host:     net.JoinHostPort(c.DatabaseHost, strconv.Itoa(c.DatabasePort)),
			Path:     "/" + c.DatabaseName,
			RawQuery: query.Encode(),
		}
		return u.String()
	default:
		query := url.Values{}
		query.Set("database", c.DatabaseName)
		query.Set("encrypt", strconv.FormatBool(c.DatabaseEncrypt))
		query.Set("TrustServerCertificate", strconv.FormatBool(c.DatabaseTrustServerCertificate))
		query.Set("connection timeout", strconv.Itoa(int(c.DatabaseConnectionTimeout.Seconds())))
		query.Set("app name", c.AppName)
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.DatabaseUserName, c.DatabasePassword),
			Host:     net.JoinHostPort(c.DatabaseHost, strconv.Itoa(c.DatabasePort)),
			RawQuery: query.Encode(),
		}
		return u.String()
	}
}
