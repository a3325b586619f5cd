package config

const (
	EnvPrefix = "foodger"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv     = "FOODGER_APP_ENV"
	EnvPort       = "FOODGER_APP_PORT"
	EnvDBDSN      = "FOODGER_DB_DSN"
	EnvDBHost     = "FOODGER_DB_HOST"
	EnvDBUser     = "FOODGER_DB_USER"
	EnvDBName     = "FOODGER_DB_NAME"
	EnvRedisURL   = "FOODGER_REDIS_URL"
	EnvJWTSecret  = "FOODGER_JWT_SECRET"
	EnvJWTIssuer  = "FOODGER_JWT_ISSUER"
	EnvJWTExpMins = "FOODGER_JWT_EXPIRATION_MINUTES"
)
