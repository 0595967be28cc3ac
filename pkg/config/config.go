package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Geocode       GeocodeConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NEXWASTE_APP_ENV" required:"true"`
	Port         string `envconfig:"NEXWASTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NEXWASTE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"NEXWASTE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"NEXWASTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NEXWASTE_DB_DSN"`
	Driver string `envconfig:"NEXWASTE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"NEXWASTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NEXWASTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NEXWASTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NEXWASTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
		}
	case DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"NEXWASTE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NEXWASTE_REDIS_ADDR"`
	Password     string        `envconfig:"NEXWASTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEXWASTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEXWASTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEXWASTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEXWASTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEXWASTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEXWASTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"NEXWASTE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"NEXWASTE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"NEXWASTE_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"NEXWASTE_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NEXWASTE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NEXWASTE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NEXWASTE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NEXWASTE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NEXWASTE_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"NEXWASTE_PASSWORD_MIN_LENGTH" default:"6"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NEXWASTE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type GeocodeConfig struct {
	BaseURL   string        `envconfig:"NEXWASTE_GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"NEXWASTE_GEOCODE_USER_AGENT" default:"nexwaste-backend"`
	Timeout   time.Duration `envconfig:"NEXWASTE_GEOCODE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NEXWASTE_AUTO_MIGRATE" default:"true"`
}
