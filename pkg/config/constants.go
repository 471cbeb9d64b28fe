package config

const (
	EnvPrefix = "PICKPACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PICKPACK_DB_DSN"
	EnvDBHost = "PICKPACK_DB_HOST"
	EnvDBUser = "PICKPACK_DB_USER"
	EnvDBName = "PICKPACK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
