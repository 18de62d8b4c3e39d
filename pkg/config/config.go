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
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.Backend == StoreBackendSQL {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Backend == StoreBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COUNTERPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"COUNTERPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"COUNTERPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COUNTERPOS_LOG_WARN_STACK" default:"false"`
	TimeZone     string `envconfig:"COUNTERPOS_TIMEZONE" default:"Local"`
	ShopName     string `envconfig:"COUNTERPOS_SHOP_NAME" default:"Food Counter"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the calendar used for bill date and month keys.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.TimeZone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s %q: %w", EnvTimeZone, name, err)
	}
	return loc, nil
}

type StoreConfig struct {
	Backend string `envconfig:"COUNTERPOS_STORE_BACKEND" default:"redis"`
}

func (s *StoreConfig) validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case StoreBackendRedis, StoreBackendSQL, StoreBackendMemory:
		return nil
	}
	return fmt.Errorf("%s must be one of %s, %s, %s; got %q",
		EnvStoreBackend, StoreBackendRedis, StoreBackendSQL, StoreBackendMemory, s.Backend)
}

type DBConfig struct {
	DSN         string `envconfig:"COUNTERPOS_DB_DSN"`
	Driver      string `envconfig:"COUNTERPOS_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"COUNTERPOS_DB_AUTO_MIGRATE" default:"false"`

	LegacyHost     string `envconfig:"COUNTERPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"COUNTERPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COUNTERPOS_DB_USER"`
	LegacyPassword string `envconfig:"COUNTERPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"COUNTERPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"COUNTERPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUNTERPOS_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"COUNTERPOS_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"COUNTERPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUNTERPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the SQL store runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"COUNTERPOS_REDIS_URL"`
	Address      string        `envconfig:"COUNTERPOS_REDIS_ADDR"`
	Password     string        `envconfig:"COUNTERPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUNTERPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUNTERPOS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"COUNTERPOS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"COUNTERPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUNTERPOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"COUNTERPOS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type PaymentConfig struct {
	PayeeVPA  string `envconfig:"COUNTERPOS_UPI_PAYEE_VPA" default:"restaurant@upi"`
	PayeeName string `envconfig:"COUNTERPOS_UPI_PAYEE_NAME"`
	Note      string `envconfig:"COUNTERPOS_UPI_NOTE" default:"Restaurant Payment"`
	QRSize    int    `envconfig:"COUNTERPOS_UPI_QR_SIZE" default:"256"`
}

type CheckoutConfig struct {
	// PayClearsCart empties the cart after a pay checkout. Off keeps the cart so the
	// same order can still be printed.
	PayClearsCart bool `envconfig:"COUNTERPOS_CHECKOUT_PAY_CLEARS_CART" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"COUNTERPOS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "counterpos.db"
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
