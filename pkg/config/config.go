package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Upstream UpstreamConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Events   EventsConfig
	CORS     CORSConfig
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
	Env          string `envconfig:"DWEC_APP_ENV" required:"true"`
	Port         string `envconfig:"DWEC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DWEC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DWEC_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"DWEC_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DWEC_DB_DSN"`

	Host     string `envconfig:"DWEC_DB_HOST"`
	Port     int    `envconfig:"DWEC_DB_PORT" default:"5432"`
	User     string `envconfig:"DWEC_DB_USER"`
	Password string `envconfig:"DWEC_DB_PASSWORD"`
	Name     string `envconfig:"DWEC_DB_NAME"`
	SSLMode  string `envconfig:"DWEC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DWEC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DWEC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DWEC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DWEC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DWEC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DWEC_REDIS_ADDR"`
	Password     string        `envconfig:"DWEC_REDIS_PASSWORD"`
	DB           int           `envconfig:"DWEC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DWEC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DWEC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DWEC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DWEC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DWEC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	// Leeway tolerated when inspecting expiry of upstream-issued bearer tokens.
	ExpiryLeeway time.Duration `envconfig:"DWEC_JWT_EXPIRY_LEEWAY" default:"30s"`
}

// UpstreamConfig points the storefront at the commerce API it consumes.
type UpstreamConfig struct {
	BaseURL        string        `envconfig:"DWEC_UPSTREAM_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"DWEC_UPSTREAM_TIMEOUT" default:"15s"`
	RetryAttempts  int           `envconfig:"DWEC_UPSTREAM_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"DWEC_UPSTREAM_RETRY_BASE_DELAY" default:"200ms"`
}

type CheckoutConfig struct {
	// ContextTTL bounds how long an unfinished checkout attempt survives.
	ContextTTL time.Duration `envconfig:"DWEC_CHECKOUT_CONTEXT_TTL" default:"30m"`
	// CallbackSecret authenticates payment-widget callbacks, when set.
	CallbackSecret string `envconfig:"DWEC_CHECKOUT_CALLBACK_SECRET"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"DWEC_CATALOG_CACHE_TTL" default:"2m"`
}

type EventsConfig struct {
	Enabled   bool   `envconfig:"DWEC_EVENTS_ENABLED" default:"false"`
	ProjectID string `envconfig:"DWEC_EVENTS_GCP_PROJECT_ID"`
	Topic     string `envconfig:"DWEC_EVENTS_TOPIC" default:"dwec-storefront-events"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DWEC_CORS_ALLOWED_ORIGINS"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
