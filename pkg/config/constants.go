package config

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "ONESTOPLEASE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ONESTOPLEASE_DB_DSN"
	EnvDBHost = "ONESTOPLEASE_DB_HOST"
	EnvDBUser = "ONESTOPLEASE_DB_USER"
	EnvDBName = "ONESTOPLEASE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
