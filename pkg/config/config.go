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
	Orders       OrdersConfig
	Payments     PaymentsConfig
	RateLimit    RateLimitConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string `envconfig:"MTAANI_APP_ENV" required:"true"`
	Port         string `envconfig:"MTAANI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MTAANI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MTAANI_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"MTAANI_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MTAANI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MTAANI_DB_DSN"`
	Driver string `envconfig:"MTAANI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MTAANI_DB_HOST"`
	LegacyPort     int    `envconfig:"MTAANI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MTAANI_DB_USER"`
	LegacyPassword string `envconfig:"MTAANI_DB_PASSWORD"`
	LegacyName     string `envconfig:"MTAANI_DB_NAME"`
	LegacySSLMode  string `envconfig:"MTAANI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MTAANI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MTAANI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MTAANI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MTAANI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"MTAANI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MTAANI_REDIS_ADDR"`
	Password     string        `envconfig:"MTAANI_REDIS_PASSWORD"`
	DB           int           `envconfig:"MTAANI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MTAANI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MTAANI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MTAANI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MTAANI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MTAANI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MTAANI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MTAANI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MTAANI_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MTAANI_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	AssignmentWindow time.Duration `envconfig:"MTAANI_ORDERS_ASSIGNMENT_WINDOW" default:"24h"`
	ExpirySweepBatch int           `envconfig:"MTAANI_ORDERS_EXPIRY_SWEEP_BATCH" default:"200"`
}

type PaymentsConfig struct {
	CodeTTL     time.Duration `envconfig:"MTAANI_PAYMENTS_CODE_TTL" default:"10m"`
	MaxAttempts int           `envconfig:"MTAANI_PAYMENTS_MAX_ATTEMPTS" default:"3"`

	// Argon2id parameters for stored simulation codes.
	ArgonMemoryKB    int `envconfig:"MTAANI_ARGON_MEMORY_KB" default:"19456"`
	ArgonTime        int `envconfig:"MTAANI_ARGON_TIME" default:"2"`
	ArgonParallelism int `envconfig:"MTAANI_ARGON_PARALLELISM" default:"1"`
	ArgonSaltLen     int `envconfig:"MTAANI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MTAANI_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	ClaimWindow  time.Duration `envconfig:"MTAANI_RATE_LIMIT_CLAIM_WINDOW" default:"1m"`
	ClaimLimit   int           `envconfig:"MTAANI_RATE_LIMIT_CLAIM_LIMIT" default:"30"`
	VerifyWindow time.Duration `envconfig:"MTAANI_RATE_LIMIT_VERIFY_WINDOW" default:"10m"`
	VerifyLimit  int           `envconfig:"MTAANI_RATE_LIMIT_VERIFY_LIMIT" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MTAANI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"MTAANI_PUBSUB_ORDERS_TOPIC" default:"mtaani-order-events"`
	OrdersSubscription string `envconfig:"MTAANI_PUBSUB_ORDERS_SUBSCRIPTION"`
	PaymentsTopic      string `envconfig:"MTAANI_PUBSUB_PAYMENTS_TOPIC" default:"mtaani-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MTAANI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MTAANI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MTAANI_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"MTAANI_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"MTAANI_CRON_INTERVAL" default:"5m"`
	JobTimeout time.Duration `envconfig:"MTAANI_CRON_JOB_TIMEOUT" default:"2m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:mtaani.db?cache=shared"
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
