package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminBootstrapConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Cart          CartConfig
	Google        GoogleConfig
	Reconcile     ReconcileConfig
	HTTPClient    HTTPClientConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			return nil, fmt.Errorf("%s is required when %s is set", EnvDBSQLitePath, EnvUseSQLite)
		}
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREFRONT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"STOREFRONT_DB_DSN"`
	Driver     string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"STOREFRONT_DB_SQLITE_PATH" default:"storefront.db"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes      int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREFRONT_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the admin session TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

// AdminBootstrapConfig seeds the first admin account when none exists.
type AdminBootstrapConfig struct {
	Email    string `envconfig:"STOREFRONT_ADMIN_EMAIL"`
	Password string `envconfig:"STOREFRONT_ADMIN_PASSWORD"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
	Metrics     bool `envconfig:"STOREFRONT_METRICS_ENABLED" default:"true"`
}

// CheckoutConfig holds the constants used when an order is invoiced.
type CheckoutConfig struct {
	TaxPercent      string        `envconfig:"STOREFRONT_CHECKOUT_TAX_PERCENT" default:"18"`
	DiscountPercent string        `envconfig:"STOREFRONT_CHECKOUT_DISCOUNT_PERCENT" default:"0"`
	HSNCode         string        `envconfig:"STOREFRONT_CHECKOUT_HSN_CODE" default:"9404"`
	Unit            string        `envconfig:"STOREFRONT_CHECKOUT_UNIT" default:"Pcs"`
	InvoiceNotes    string        `envconfig:"STOREFRONT_CHECKOUT_INVOICE_NOTES" default:"Thank you for your order!"`
	DueDays         int           `envconfig:"STOREFRONT_CHECKOUT_DUE_DAYS" default:"7"`
	MerchantCode    string        `envconfig:"STOREFRONT_CHECKOUT_MERCHANT_CODE" default:"0000"`
	LockTTL         time.Duration `envconfig:"STOREFRONT_CHECKOUT_LOCK_TTL" default:"2m"`
	SuccessRedirect time.Duration `envconfig:"STOREFRONT_CHECKOUT_SUCCESS_REDIRECT" default:"5s"`
	NodeID          int64         `envconfig:"STOREFRONT_CHECKOUT_NODE_ID" default:"1"`
}

// Tax returns the configured tax percentage.
func (c CheckoutConfig) Tax() decimal.Decimal {
	return decimal.RequireFromString(c.TaxPercent)
}

// Discount returns the configured discount percentage.
func (c CheckoutConfig) Discount() decimal.Decimal {
	return decimal.RequireFromString(c.DiscountPercent)
}

func (c CheckoutConfig) validate() error {
	for env, raw := range map[string]string{EnvCheckoutTax: c.TaxPercent, EnvCheckoutDiscount: c.DiscountPercent} {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%s must be between 0 and 100", env)
		}
	}
	if c.DueDays < 0 {
		return fmt.Errorf("%s must not be negative", EnvCheckoutDueDays)
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("%s must be between 0 and 1023", EnvCheckoutNodeID)
	}
	return nil
}

type CartConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"24h"`
}

// GoogleConfig carries credentials used when the stored sheet settings only hold an API key.
type GoogleConfig struct {
	CredentialsJSON        string `envconfig:"STOREFRONT_GOOGLE_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type ReconcileConfig struct {
	Interval    time.Duration `envconfig:"STOREFRONT_RECONCILE_INTERVAL" default:"5m"`
	Lookback    time.Duration `envconfig:"STOREFRONT_RECONCILE_LOOKBACK" default:"72h"`
	LockTTL     time.Duration `envconfig:"STOREFRONT_RECONCILE_LOCK_TTL" default:"4m"`
	Batch       int           `envconfig:"STOREFRONT_RECONCILE_BATCH" default:"100"`
	MaxAttempts int           `envconfig:"STOREFRONT_RECONCILE_MAX_ATTEMPTS" default:"5"`
}

type HTTPClientConfig struct {
	Timeout time.Duration `envconfig:"STOREFRONT_HTTP_CLIENT_TIMEOUT" default:"15s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
