package config

const (
	EnvPrefix = "BOUQUET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	minJWTSecretLen = 16
)

const (
	EnvAppEnv       = "BOUQUET_APP_ENV"
	EnvPort         = "BOUQUET_APP_PORT"
	EnvShopTimezone = "BOUQUET_SHOP_TIMEZONE"

	EnvRedisURL  = "BOUQUET_REDIS_URL"
	EnvRedisAddr = "BOUQUET_REDIS_ADDR"

	EnvJWTSecret  = "BOUQUET_JWT_SECRET"
	EnvJWTIssuer  = "BOUQUET_JWT_ISSUER"
	EnvJWTExpMins = "BOUQUET_JWT_EXPIRATION_MINUTES"

	EnvBackendAuthURLs    = "BOUQUET_BACKEND_AUTH_URLS"
	EnvBackendProductURLs = "BOUQUET_BACKEND_PRODUCT_URLS"
	EnvBackendOrderURLs   = "BOUQUET_BACKEND_ORDER_URLS"
	EnvBackendPaymentURLs = "BOUQUET_BACKEND_PAYMENT_URLS"
	EnvBackendTimeout     = "BOUQUET_BACKEND_TIMEOUT"

	EnvCatalogCacheTTL = "BOUQUET_CACHE_CATALOG_TTL"
	EnvCORSOrigins     = "BOUQUET_CORS_ALLOWED_ORIGINS"
)
