package config

// EnvPrefix scopes every variable read by Load.
const EnvPrefix = "MTAANI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MTAANI_APP_ENV"
	EnvPort     = "MTAANI_APP_PORT"
	EnvLogLevel = "MTAANI_LOG_LEVEL"

	EnvDBDSN    = "MTAANI_DB_DSN"
	EnvDBDriver = "MTAANI_DB_DRIVER"
	EnvDBHost   = "MTAANI_DB_HOST"
	EnvDBUser   = "MTAANI_DB_USER"
	EnvDBName   = "MTAANI_DB_NAME"

	EnvRedisURL = "MTAANI_REDIS_URL"

	EnvJWTSecret  = "MTAANI_JWT_SECRET"
	EnvJWTIssuer  = "MTAANI_JWT_ISSUER"
	EnvJWTExpMins = "MTAANI_JWT_EXPIRATION_MINUTES"

	EnvAssignmentWindow = "MTAANI_ORDERS_ASSIGNMENT_WINDOW"
	EnvPaymentCodeTTL   = "MTAANI_PAYMENTS_CODE_TTL"
	EnvPaymentMaxTries  = "MTAANI_PAYMENTS_MAX_ATTEMPTS"

	EnvGCPProjectID      = "MTAANI_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "MTAANI_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub   = "MTAANI_PUBSUB_ORDERS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
