package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "COUNTERPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendRedis  = "redis"
	StoreBackendSQL    = "sql"
	StoreBackendMemory = "memory"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "COUNTERPOS_APP_ENV"
	EnvPort         = "COUNTERPOS_APP_PORT"
	EnvTimeZone     = "COUNTERPOS_TIMEZONE"
	EnvStoreBackend = "COUNTERPOS_STORE_BACKEND"

	EnvDBDSN    = "COUNTERPOS_DB_DSN"
	EnvDBDriver = "COUNTERPOS_DB_DRIVER"
	EnvDBHost   = "COUNTERPOS_DB_HOST"
	EnvDBUser   = "COUNTERPOS_DB_USER"
	EnvDBName   = "COUNTERPOS_DB_NAME"

	EnvRedisURL  = "COUNTERPOS_REDIS_URL"
	EnvRedisAddr = "COUNTERPOS_REDIS_ADDR"

	EnvPayeeVPA      = "COUNTERPOS_UPI_PAYEE_VPA"
	EnvPayClearsCart = "COUNTERPOS_CHECKOUT_PAY_CLEARS_CART"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
