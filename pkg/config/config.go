package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Shop         ShopConfig
	OpenAI       OpenAIConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JOC_APP_ENV" required:"true"`
	Port         string `envconfig:"JOC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"JOC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JOC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JOC_DB_DSN"`
	Driver string `envconfig:"JOC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"JOC_DB_HOST"`
	Port     int    `envconfig:"JOC_DB_PORT" default:"5432"`
	User     string `envconfig:"JOC_DB_USER"`
	Password string `envconfig:"JOC_DB_PASSWORD"`
	Name     string `envconfig:"JOC_DB_NAME"`
	SSLMode  string `envconfig:"JOC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JOC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JOC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JOC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JOC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JOC_REDIS_URL"`
	Address      string        `envconfig:"JOC_REDIS_ADDR"`
	Password     string        `envconfig:"JOC_REDIS_PASSWORD"`
	DB           int           `envconfig:"JOC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JOC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JOC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JOC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JOC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JOC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"JOC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"JOC_JWT_ISSUER" default:"jewelryoclock"`
	ExpirationMinutes int    `envconfig:"JOC_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JOC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JOC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JOC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JOC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JOC_ARGON_KEY_LEN" default:"32"`
}

// ShopConfig carries storefront policy knobs.
type ShopConfig struct {
	// AdminEmail is the single account mapped to the admin role. Every
	// other authenticated principal is a customer.
	AdminEmail string `envconfig:"JOC_ADMIN_EMAIL" default:"admin@jewelryoclock.com"`
	// CartTTL bounds how long an untouched cart snapshot survives.
	CartTTL time.Duration `envconfig:"JOC_CART_TTL" default:"720h"`
	// LastOrderTTL bounds the confirmation snapshot kept after checkout.
	LastOrderTTL time.Duration `envconfig:"JOC_LAST_ORDER_TTL" default:"24h"`
	// PlaceOrderRetries bounds commit retries on transaction conflicts.
	PlaceOrderRetries int `envconfig:"JOC_PLACE_ORDER_RETRIES" default:"3"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"JOC_OPENAI_API_KEY"`
	BaseURL string        `envconfig:"JOC_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string        `envconfig:"JOC_OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"JOC_OPENAI_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"JOC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"JOC_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool `envconfig:"JOC_SEED_CATALOG" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envName, value := range map[string]string{
		"JOC_DB_HOST": db.Host,
		"JOC_DB_USER": db.User,
		"JOC_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either JOC_DB_DSN or %s are required", strings.Join(missing, ", "))
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
