package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Inventory    InventoryConfig
	Pet          PetConfig
	Catalog      CatalogConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Eventing     EventingConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Inventory.MaxRetries < 0 {
		return fmt.Errorf("%s must be >= 0", EnvInventoryMaxRetries)
	}
	if c.Pet.DecayPeriod <= 0 {
		return fmt.Errorf("%s must be positive", EnvPetDecayPeriod)
	}
	if c.Pet.HungerRate < 0 || c.Pet.ThirstRate < 0 {
		return fmt.Errorf("%s and %s must be >= 0", EnvPetHungerRate, EnvPetThirstRate)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"FRUITTREE_APP_ENV" required:"true"`
	Port         string `envconfig:"FRUITTREE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRUITTREE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FRUITTREE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FRUITTREE_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"FRUITTREE_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FRUITTREE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"FRUITTREE_DB_DSN"`
	Driver     string `envconfig:"FRUITTREE_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"FRUITTREE_DB_SQLITE_PATH" default:"fruittree.db"`

	LegacyHost     string `envconfig:"FRUITTREE_DB_HOST"`
	LegacyPort     int    `envconfig:"FRUITTREE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRUITTREE_DB_USER"`
	LegacyPassword string `envconfig:"FRUITTREE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRUITTREE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRUITTREE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRUITTREE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRUITTREE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRUITTREE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRUITTREE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL            string        `envconfig:"FRUITTREE_REDIS_URL" required:"true"`
	Address        string        `envconfig:"FRUITTREE_REDIS_ADDR"`
	Password       string        `envconfig:"FRUITTREE_REDIS_PASSWORD"`
	DB             int           `envconfig:"FRUITTREE_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"FRUITTREE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"FRUITTREE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"FRUITTREE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"FRUITTREE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"FRUITTREE_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"FRUITTREE_IDEMPOTENCY_TTL" default:"24h"`
}

// JWTConfig covers verification only; tokens are minted by the identity service.
type JWTConfig struct {
	Secret string `envconfig:"FRUITTREE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FRUITTREE_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FRUITTREE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRUITTREE_AUTO_MIGRATE" default:"false"`
}

type InventoryConfig struct {
	MaxRetries   int           `envconfig:"FRUITTREE_INVENTORY_MAX_RETRIES" default:"3"`
	RetryBackoff time.Duration `envconfig:"FRUITTREE_INVENTORY_RETRY_BACKOFF" default:"25ms"`
}

type PetConfig struct {
	DecayPeriod time.Duration `envconfig:"FRUITTREE_PET_DECAY_PERIOD" default:"10m"`
	HungerRate  int           `envconfig:"FRUITTREE_PET_HUNGER_RATE" default:"1"`
	ThirstRate  int           `envconfig:"FRUITTREE_PET_THIRST_RATE" default:"2"`
}

type CatalogConfig struct {
	// Path overrides the embedded fruit catalog when set.
	Path string `envconfig:"FRUITTREE_CATALOG_PATH"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"FRUITTREE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"FRUITTREE_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	RewardsSubscription string `envconfig:"FRUITTREE_PUBSUB_REWARDS_SUBSCRIPTION" default:"fruittree-reward-events"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"FRUITTREE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type CronConfig struct {
	Schedule string        `envconfig:"FRUITTREE_CRON_SCHEDULE"`
	Interval time.Duration `envconfig:"FRUITTREE_CRON_INTERVAL" default:"15m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
