package config

const (
	EnvPrefix = "DWEC"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "DWEC_DB_DSN"
	EnvDBHost = "DWEC_DB_HOST"
	EnvDBUser = "DWEC_DB_USER"
	EnvDBName = "DWEC_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
