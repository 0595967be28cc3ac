package config

// EnvPrefix is the envconfig prefix applied to all variables.
const EnvPrefix = "NEXWASTE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// EnvDBDSN names the connection string variable for error messages.
const EnvDBDSN = "NEXWASTE_DB_DSN"
