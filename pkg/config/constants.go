package config

// EnvPrefix is applied by envconfig to fields without an explicit tag.
const EnvPrefix = "FLEETDESK"

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)

const (
	EnvAppEnv                 = "FLEETDESK_APP_ENV"
	EnvPort                   = "FLEETDESK_APP_PORT"
	EnvDBDSN                  = "FLEETDESK_DB_DSN"
	EnvDBHost                 = "FLEETDESK_DB_HOST"
	EnvDBUser                 = "FLEETDESK_DB_USER"
	EnvDBName                 = "FLEETDESK_DB_NAME"
	EnvRedisURL               = "FLEETDESK_REDIS_URL"
	EnvJWTSecret              = "FLEETDESK_JWT_SECRET"
	EnvJWTIssuer              = "FLEETDESK_JWT_ISSUER"
	EnvJWTExpMins             = "FLEETDESK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FLEETDESK_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "FLEETDESK_GCP_PROJECT_ID"
	EnvPubSubDispatchTopic    = "FLEETDESK_PUBSUB_DISPATCH_TOPIC"
	EnvPubSubDispatchSub      = "FLEETDESK_PUBSUB_DISPATCH_SUBSCRIPTION"
	EnvDocumentsDir           = "FLEETDESK_DOCUMENTS_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
