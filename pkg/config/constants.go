package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "STOREFRONT_APP_ENV"
	EnvPort       = "STOREFRONT_APP_PORT"
	EnvLogLevel   = "STOREFRONT_LOG_LEVEL"
	EnvUseSQLite  = "STOREFRONT_USE_SQLITE"
	EnvRedisURL   = "STOREFRONT_REDIS_URL"
	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvDBDSN        = "STOREFRONT_DB_DSN"
	EnvDBHost       = "STOREFRONT_DB_HOST"
	EnvDBPort       = "STOREFRONT_DB_PORT"
	EnvDBUser       = "STOREFRONT_DB_USER"
	EnvDBPassword   = "STOREFRONT_DB_PASSWORD"
	EnvDBName       = "STOREFRONT_DB_NAME"
	EnvDBSQLitePath = "STOREFRONT_DB_SQLITE_PATH"

	EnvCheckoutTax      = "STOREFRONT_CHECKOUT_TAX_PERCENT"
	EnvCheckoutDiscount = "STOREFRONT_CHECKOUT_DISCOUNT_PERCENT"
	EnvCheckoutDueDays  = "STOREFRONT_CHECKOUT_DUE_DAYS"
	EnvCheckoutNodeID   = "STOREFRONT_CHECKOUT_NODE_ID"
	EnvCartTTL          = "STOREFRONT_CART_TTL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
