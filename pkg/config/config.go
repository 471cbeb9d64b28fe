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
	Scan         ScanConfig
	Picking      PickingConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"PICKPACK_APP_ENV" required:"true"`
	Port         string `envconfig:"PICKPACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PICKPACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PICKPACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PICKPACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PICKPACK_DB_DSN"`
	Driver string `envconfig:"PICKPACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PICKPACK_DB_HOST"`
	LegacyPort     int    `envconfig:"PICKPACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PICKPACK_DB_USER"`
	LegacyPassword string `envconfig:"PICKPACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PICKPACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PICKPACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PICKPACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PICKPACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PICKPACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PICKPACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PICKPACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PICKPACK_REDIS_ADDR"`
	Password     string        `envconfig:"PICKPACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PICKPACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PICKPACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PICKPACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PICKPACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PICKPACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PICKPACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PICKPACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PICKPACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PICKPACK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// ScanConfig tunes the barcode stream resolver.
type ScanConfig struct {
	// DedupeWindow suppresses repeated reads of the same decoded value so a
	// scanner held over a label does not hammer the state machine.
	DedupeWindow time.Duration `envconfig:"PICKPACK_SCAN_DEDUPE_WINDOW" default:"1500ms"`
	// SessionBuffer bounds pending decodes per scanning session.
	SessionBuffer int `envconfig:"PICKPACK_SCAN_SESSION_BUFFER" default:"32"`
	// RefetchAttempts controls the backoff retry on the post-pick order read.
	RefetchAttempts int `envconfig:"PICKPACK_SCAN_REFETCH_ATTEMPTS" default:"3"`
	// RateLimit caps scans accepted per actor inside RateLimitWindow. Zero
	// disables the limiter.
	RateLimit       int           `envconfig:"PICKPACK_SCAN_RATE_LIMIT" default:"30"`
	RateLimitWindow time.Duration `envconfig:"PICKPACK_SCAN_RATE_LIMIT_WINDOW" default:"10s"`
}

// PickingConfig carries operational thresholds for the fulfillment floor.
type PickingConfig struct {
	StaleAfter time.Duration `envconfig:"PICKPACK_PICKING_STALE_AFTER" default:"4h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PICKPACK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PICKPACK_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"PICKPACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	FulfillmentTopic        string `envconfig:"PICKPACK_PUBSUB_FULFILLMENT_TOPIC" default:"pp-fulfillment-events"`
	FulfillmentSubscription string `envconfig:"PICKPACK_PUBSUB_FULFILLMENT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PICKPACK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PICKPACK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PICKPACK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"PICKPACK_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"PICKPACK_CRON_LOCK_TTL" default:"55m"`
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
