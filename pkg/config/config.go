package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Backend       BackendConfig
	AuthRateLimit AuthRateLimitConfig
	Cache         CacheConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if _, locErr := c.App.Location(); locErr != nil {
		err = multierr.Append(err, locErr)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvJWTExpMins))
	}
	if len(strings.TrimSpace(c.JWT.Secret)) < minJWTSecretLen {
		err = multierr.Append(err, fmt.Errorf("%s must be at least %d characters", EnvJWTSecret, minJWTSecretLen))
	}
	for env, urls := range c.Backend.byEnv() {
		if len(urls) == 0 {
			err = multierr.Append(err, fmt.Errorf("%s requires at least one url", env))
			continue
		}
		for _, raw := range urls {
			if urlErr := validateBaseURL(raw); urlErr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", env, urlErr))
			}
		}
	}
	if c.Backend.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvBackendTimeout))
	}
	return err
}

type AppConfig struct {
	Env          string `envconfig:"BOUQUET_APP_ENV" required:"true"`
	Port         string `envconfig:"BOUQUET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BOUQUET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOUQUET_LOG_WARN_STACK" default:"false"`
	ShopTimezone string `envconfig:"BOUQUET_SHOP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the shop timezone used for pickup calendar comparisons.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.ShopTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvShopTimezone, err)
	}
	return loc, nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUQUET_REDIS_URL"`
	Address      string        `envconfig:"BOUQUET_REDIS_ADDR"`
	Password     string        `envconfig:"BOUQUET_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUQUET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOUQUET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOUQUET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOUQUET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUQUET_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BOUQUET_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOUQUET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOUQUET_JWT_ISSUER" default:"bouquet-bff"`
	ExpirationMinutes int    `envconfig:"BOUQUET_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// SessionTTL is how long a login session (and its backend token) lives in Redis.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// BackendConfig lists candidate base URLs per upstream service, tried in order.
type BackendConfig struct {
	AuthURLs    []string `envconfig:"BOUQUET_BACKEND_AUTH_URLS" required:"true"`
	ProductURLs []string `envconfig:"BOUQUET_BACKEND_PRODUCT_URLS" required:"true"`
	OrderURLs   []string `envconfig:"BOUQUET_BACKEND_ORDER_URLS" required:"true"`
	PaymentURLs []string `envconfig:"BOUQUET_BACKEND_PAYMENT_URLS" required:"true"`

	Timeout            time.Duration `envconfig:"BOUQUET_BACKEND_TIMEOUT" default:"10s"`
	BreakerMaxFailures uint32        `envconfig:"BOUQUET_BACKEND_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BOUQUET_BACKEND_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

func (b BackendConfig) byEnv() map[string][]string {
	return map[string][]string{
		EnvBackendAuthURLs:    b.AuthURLs,
		EnvBackendProductURLs: b.ProductURLs,
		EnvBackendOrderURLs:   b.OrderURLs,
		EnvBackendPaymentURLs: b.PaymentURLs,
	}
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BOUQUET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BOUQUET_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BOUQUET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BOUQUET_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BOUQUET_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BOUQUET_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CacheConfig struct {
	CatalogEnabled bool          `envconfig:"BOUQUET_CACHE_CATALOG_ENABLED" default:"true"`
	CatalogTTL     time.Duration `envconfig:"BOUQUET_CACHE_CATALOG_TTL" default:"2m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BOUQUET_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func validateBaseURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("empty url")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", trimmed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", trimmed)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q is missing a host", trimmed)
	}
	return nil
}
