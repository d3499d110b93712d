package config

const (
	// EnvPrefix is the envconfig prefix shared by every FIELDOPS_ variable.
	EnvPrefix = "FIELDOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FIELDOPS_DB_DSN"
	EnvDBHost = "FIELDOPS_DB_HOST"
	EnvDBUser = "FIELDOPS_DB_USER"
	EnvDBName = "FIELDOPS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
