package config

const EnvPrefix = "EZSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "EZSHOP_APP_ENV"
	EnvPort       = "EZSHOP_APP_PORT"
	EnvDBDSN      = "EZSHOP_DB_DSN"
	EnvDBDriver   = "EZSHOP_DB_DRIVER"
	EnvDBHost     = "EZSHOP_DB_HOST"
	EnvDBUser     = "EZSHOP_DB_USER"
	EnvDBName     = "EZSHOP_DB_NAME"
	EnvRedisURL   = "EZSHOP_REDIS_URL"
	EnvJWTSecret  = "EZSHOP_JWT_SECRET"
	EnvJWTIssuer  = "EZSHOP_JWT_ISSUER"
	EnvJWTExpMins = "EZSHOP_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
