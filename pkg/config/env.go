package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = ""

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "FRUITTREE_APP_ENV"
	EnvPort         = "FRUITTREE_APP_PORT"
	EnvLogLevel     = "FRUITTREE_LOG_LEVEL"
	EnvLogFormat    = "FRUITTREE_LOG_FORMAT"
	EnvLogWarnStack = "FRUITTREE_LOG_WARN_STACK"
	EnvServiceKind  = "FRUITTREE_SERVICE_KIND"
	EnvCORSOrigins  = "FRUITTREE_CORS_ALLOWED_ORIGINS"

	EnvDBDSN        = "FRUITTREE_DB_DSN"
	EnvDBHost       = "FRUITTREE_DB_HOST"
	EnvDBPort       = "FRUITTREE_DB_PORT"
	EnvDBUser       = "FRUITTREE_DB_USER"
	EnvDBPassword   = "FRUITTREE_DB_PASSWORD"
	EnvDBName       = "FRUITTREE_DB_NAME"
	EnvDBSSLMode    = "FRUITTREE_DB_SSLMODE"
	EnvDBSQLitePath = "FRUITTREE_DB_SQLITE_PATH"

	EnvRedisURL = "FRUITTREE_REDIS_URL"

	EnvJWTSecret = "FRUITTREE_JWT_SECRET"
	EnvJWTIssuer = "FRUITTREE_JWT_ISSUER"

	EnvUseSQLite   = "FRUITTREE_USE_SQLITE"
	EnvAutoMigrate = "FRUITTREE_AUTO_MIGRATE"

	EnvInventoryMaxRetries   = "FRUITTREE_INVENTORY_MAX_RETRIES"
	EnvInventoryRetryBackoff = "FRUITTREE_INVENTORY_RETRY_BACKOFF"

	EnvPetDecayPeriod = "FRUITTREE_PET_DECAY_PERIOD"
	EnvPetHungerRate  = "FRUITTREE_PET_HUNGER_RATE"
	EnvPetThirstRate  = "FRUITTREE_PET_THIRST_RATE"

	EnvCatalogPath = "FRUITTREE_CATALOG_PATH"

	EnvGCPProjectID          = "FRUITTREE_GCP_PROJECT_ID"
	EnvGCPCredentialsJSON    = "FRUITTREE_GCP_CREDENTIALS_JSON"
	EnvPubSubRewardsSub      = "FRUITTREE_PUBSUB_REWARDS_SUBSCRIPTION"
	EnvEventingIdempotentTTL = "FRUITTREE_EVENTING_IDEMPOTENCY_TTL"

	EnvCronSchedule = "FRUITTREE_CRON_SCHEDULE"
	EnvCronInterval = "FRUITTREE_CRON_INTERVAL"
)

// legacyDBEnvVars must all be set when no DSN is supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
