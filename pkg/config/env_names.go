package config

const (
	EnvPrefix = "FOREVER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FOREVER_DB_DSN"
	EnvDBHost = "FOREVER_DB_HOST"
	EnvDBUser = "FOREVER_DB_USER"
	EnvDBName = "FOREVER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
