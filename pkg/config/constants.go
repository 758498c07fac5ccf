package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "WASTEFLOW"

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)

// Environment variable names shared between Load, ensureDSN, and tests.
const (
	EnvAppEnv   = "WASTEFLOW_APP_ENV"
	EnvPort     = "WASTEFLOW_APP_PORT"
	EnvLogLevel = "WASTEFLOW_LOG_LEVEL"

	EnvDBDSN  = "WASTEFLOW_DB_DSN"
	EnvDBHost = "WASTEFLOW_DB_HOST"
	EnvDBUser = "WASTEFLOW_DB_USER"
	EnvDBName = "WASTEFLOW_DB_NAME"

	EnvRedisURL = "WASTEFLOW_REDIS_URL"

	EnvSolverURL     = "WASTEFLOW_SOLVER_URL"
	EnvSolverTimeout = "WASTEFLOW_SOLVER_TIMEOUT"

	EnvGCPProjectID   = "WASTEFLOW_GCP_PROJECT_ID"
	EnvPubSubTelemSub = "WASTEFLOW_PUBSUB_TELEMETRY_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
