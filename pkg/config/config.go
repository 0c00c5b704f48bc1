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
	Admin        AdminConfig
	Stripe       StripeConfig
	Uploads      UploadsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"UPLIFTBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"UPLIFTBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"UPLIFTBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"UPLIFTBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"UPLIFTBRIDGE_DB_DSN"`
	Driver string `envconfig:"UPLIFTBRIDGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"UPLIFTBRIDGE_DB_HOST"`
	LegacyPort     int    `envconfig:"UPLIFTBRIDGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"UPLIFTBRIDGE_DB_USER"`
	LegacyPassword string `envconfig:"UPLIFTBRIDGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"UPLIFTBRIDGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"UPLIFTBRIDGE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"UPLIFTBRIDGE_SQLITE_PATH" default:"upliftbridge.db"`

	MaxOpenConns    int           `envconfig:"UPLIFTBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"UPLIFTBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"UPLIFTBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"UPLIFTBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"UPLIFTBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"UPLIFTBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"UPLIFTBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"UPLIFTBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"UPLIFTBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"UPLIFTBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"UPLIFTBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"UPLIFTBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"UPLIFTBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AdminConfig configures the shared-key admin gate. The key is a capability
// token: presenting it once caches a session flag in Redis for SessionTTL.
type AdminConfig struct {
	Key             string        `envconfig:"UPLIFTBRIDGE_ADMIN_KEY" required:"true"`
	SessionTTL      time.Duration `envconfig:"UPLIFTBRIDGE_ADMIN_SESSION_TTL" default:"12h"`
	AttemptWindow   time.Duration `envconfig:"UPLIFTBRIDGE_ADMIN_ATTEMPT_WINDOW" default:"1m"`
	AttemptLimit    int           `envconfig:"UPLIFTBRIDGE_ADMIN_ATTEMPT_LIMIT" default:"10"`
	ReviewerName    string        `envconfig:"UPLIFTBRIDGE_ADMIN_REVIEWER_NAME" default:"Admin"`
	MinRejectionLen int           `envconfig:"UPLIFTBRIDGE_ADMIN_MIN_REJECTION_LEN" default:"10"`
}

type StripeConfig struct {
	APIKey string `envconfig:"UPLIFTBRIDGE_STRIPE_API_KEY"`
	Env    string `envconfig:"UPLIFTBRIDGE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type UploadsConfig struct {
	Dir          string `envconfig:"UPLIFTBRIDGE_UPLOADS_DIR" default:"uploads"`
	PublicPrefix string `envconfig:"UPLIFTBRIDGE_UPLOADS_PUBLIC_PREFIX" default:"/uploads"`
	MaxFiles     int    `envconfig:"UPLIFTBRIDGE_UPLOADS_MAX_FILES" default:"6"`
	MaxUploadMB  int    `envconfig:"UPLIFTBRIDGE_UPLOADS_MAX_MB" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"UPLIFTBRIDGE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"UPLIFTBRIDGE_AUTO_MIGRATE" default:"false"`
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
