package config

// EnvPrefix is the envconfig prefix shared by every variable below.
const EnvPrefix = "UPLIFTBRIDGE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv   = "UPLIFTBRIDGE_APP_ENV"
	EnvPort     = "UPLIFTBRIDGE_APP_PORT"
	EnvDBDSN    = "UPLIFTBRIDGE_DB_DSN"
	EnvDBHost   = "UPLIFTBRIDGE_DB_HOST"
	EnvDBUser   = "UPLIFTBRIDGE_DB_USER"
	EnvDBName   = "UPLIFTBRIDGE_DB_NAME"
	EnvRedisURL = "UPLIFTBRIDGE_REDIS_URL"
	EnvAdminKey = "UPLIFTBRIDGE_ADMIN_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
