package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

const devSecret = "rrhh_dev_secret_key" // development fallback only

// ErrMissingSecret is returned when production runs without SECRET_KEY
var ErrMissingSecret = errors.New("SECRET_KEY environment variable is required in production")

// Config holds every runtime setting of the service
type Config struct {
	Env   string
	Debug bool

	Host string
	Port string

	// database
	DBDriver    string // sqlite or postgres
	DBPath      string // sqlite file (or file: URI)
	DatabaseURL string // postgres DSN
	DBTimeout   time.Duration

	// auth
	SecretKey string
	TokenTTL  time.Duration

	CORSOrigins []string

	// logging
	LogLevel string
	LogFile  string

	SeedExampleAccounts bool

	// optional infrastructure
	RedisAddr       string
	RedisPassword   string
	LoginRateLimit  int
	LoginRateWindow time.Duration
	NATSURL         string
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configs/.env and .env (when present) and builds a Config from
// the environment, applying the defaults of the selected APP_ENV profile.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() (*Config, error) {
	env := strings.ToLower(getEnvString("APP_ENV", EnvDevelopment))
	d := defaultsFor(env)

	cfg := &Config{
		Env:                 env,
		Debug:               getEnvBool("DEBUG", d.Debug),
		Host:                getEnvString("HOST", d.Host),
		Port:                getEnvString("PORT", d.Port),
		DBDriver:            strings.ToLower(getEnvString("DB_DRIVER", d.DBDriver)),
		DBPath:              getEnvString("DB_PATH", d.DBPath),
		DatabaseURL:         getEnvString("DATABASE_URL", ""),
		DBTimeout:           getEnvDuration("DB_TIMEOUT", d.DBTimeout),
		SecretKey:           getEnvString("SECRET_KEY", getEnvString("JWT_SECRET", "")),
		TokenTTL:            getEnvDuration("TOKEN_TTL", d.TokenTTL),
		CORSOrigins:         getEnvList("CORS_ORIGINS", d.CORSOrigins),
		LogLevel:            getEnvString("LOG_LEVEL", d.LogLevel),
		LogFile:             getEnvString("LOG_FILE", ""),
		SeedExampleAccounts: getEnvBool("SEED_EXAMPLE_ACCOUNTS", d.SeedExampleAccounts),
		RedisAddr:           getEnvString("REDIS_ADDR", ""),
		RedisPassword:       getEnvString("REDIS_PASSWORD", ""),
		LoginRateLimit:      getEnvInt("LOGIN_RATE_LIMIT", d.LoginRateLimit),
		LoginRateWindow:     getEnvDuration("LOGIN_RATE_WINDOW", d.LoginRateWindow),
		NATSURL:             getEnvString("NATS_URL", ""),
	}

	if cfg.SecretKey == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingSecret
		}
		cfg.SecretKey = devSecret
	}

	return cfg, nil
}

func defaultsFor(env string) Config {
	base := Config{
		Debug:               true,
		Host:                "0.0.0.0",
		Port:                "8000",
		DBDriver:            "sqlite",
		DBPath:              "rrhh.db",
		DBTimeout:           10 * time.Second,
		TokenTTL:            8 * time.Hour,
		CORSOrigins:         []string{"http://localhost:4200", "http://127.0.0.1:4200"},
		LogLevel:            "debug",
		SeedExampleAccounts: true,
		LoginRateLimit:      10,
		LoginRateWindow:     time.Minute,
	}

	switch env {
	case EnvProduction:
		base.Debug = false
		base.LogLevel = "info"
		base.SeedExampleAccounts = false
		base.CORSOrigins = nil
	case EnvTesting:
		base.DBPath = "file::memory:?cache=shared"
		base.TokenTTL = 15 * time.Minute
		base.LogLevel = "warn"
		base.DBTimeout = 2 * time.Second
	}

	return base
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
