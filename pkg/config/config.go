package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"EZSHOP_APP_ENV" required:"true"`
	Port         string        `envconfig:"EZSHOP_APP_PORT" required:"true"`
	LogLevel     string        `envconfig:"EZSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"EZSHOP_LOG_WARN_STACK" default:"false"`
	ReadTimeout  time.Duration `envconfig:"EZSHOP_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"EZSHOP_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"EZSHOP_HTTP_IDLE_TIMEOUT" default:"60s"`
	CORSOrigins  []string      `envconfig:"EZSHOP_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EZSHOP_DB_DSN"`
	Driver string `envconfig:"EZSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EZSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"EZSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EZSHOP_DB_USER"`
	LegacyPassword string `envconfig:"EZSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"EZSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"EZSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EZSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EZSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EZSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EZSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional: leaving both URL and Address empty disables
// idempotency replay and rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"EZSHOP_REDIS_URL"`
	Address      string        `envconfig:"EZSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"EZSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"EZSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EZSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EZSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EZSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EZSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EZSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"EZSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EZSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EZSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RateLimitConfig struct {
	CartWindow time.Duration `envconfig:"EZSHOP_RATE_LIMIT_CART_WINDOW" default:"1m"`
	CartLimit  int           `envconfig:"EZSHOP_RATE_LIMIT_CART_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EZSHOP_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"EZSHOP_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"EZSHOP_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
