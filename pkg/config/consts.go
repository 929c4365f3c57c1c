package config

// EnvPrefix namespaces every environment variable the backend reads.
const EnvPrefix = "MEGANO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MEGANO_DB_DSN"
	EnvDBHost = "MEGANO_DB_HOST"
	EnvDBUser = "MEGANO_DB_USER"
	EnvDBName = "MEGANO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
