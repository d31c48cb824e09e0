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
	CartSync     CartSyncConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOREVER_APP_ENV" required:"true"`
	Port         string `envconfig:"FOREVER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOREVER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOREVER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOREVER_DB_DSN"`
	Driver string `envconfig:"FOREVER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOREVER_DB_HOST"`
	LegacyPort     int    `envconfig:"FOREVER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOREVER_DB_USER"`
	LegacyPassword string `envconfig:"FOREVER_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOREVER_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOREVER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOREVER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOREVER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOREVER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOREVER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOREVER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOREVER_REDIS_ADDR"`
	Password     string        `envconfig:"FOREVER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOREVER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOREVER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOREVER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOREVER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOREVER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOREVER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FOREVER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FOREVER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FOREVER_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"FOREVER_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

// CartSyncConfig bounds the client-side cart propagation path. PushTimeout is
// the per-call deadline after which a sync attempt is treated as failed and
// the local cart is rolled back.
type CartSyncConfig struct {
	PushTimeout time.Duration `envconfig:"FOREVER_CART_SYNC_PUSH_TIMEOUT" default:"15s"`
	QueueSize   int           `envconfig:"FOREVER_CART_SYNC_QUEUE_SIZE" default:"64"`
}

type CheckoutConfig struct {
	DeliveryFee int    `envconfig:"FOREVER_CHECKOUT_DELIVERY_FEE" default:"50"`
	Currency    string `envconfig:"FOREVER_CHECKOUT_CURRENCY" default:"INR"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FOREVER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FOREVER_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
