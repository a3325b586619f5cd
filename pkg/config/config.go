package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	Flags FeatureFlagsConfig
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
	Env          string `envconfig:"FOODGER_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FOODGER_DB_DSN"`

	Host     string `envconfig:"FOODGER_DB_HOST"`
	Port     int    `envconfig:"FOODGER_DB_PORT" default:"5432"`
	User     string `envconfig:"FOODGER_DB_USER"`
	Password string `envconfig:"FOODGER_DB_PASSWORD"`
	Name     string `envconfig:"FOODGER_DB_NAME"`
	SSLMode  string `envconfig:"FOODGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("either %s or %s, %s and %s are required",
			EnvDBDSN, EnvDBHost, EnvDBUser, EnvDBName)
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

type RedisConfig struct {
	URL          string        `envconfig:"FOODGER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODGER_REDIS_ADDR"`
	Password     string        `envconfig:"FOODGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FOODGER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FOODGER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FOODGER_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODGER_AUTO_MIGRATE" default:"false"`
}
