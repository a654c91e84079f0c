package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes all environment variables consumed by the platform.
	EnvPrefix = "OGP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Mail         MailConfig
	Numbering    NumberingConfig
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
	Env          string `envconfig:"OGP_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"OGP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OGP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OGP_SERVICE_KIND" default:"worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"OGP_DB_DSN"`
	Driver string `envconfig:"OGP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"OGP_DB_HOST"`
	Port     int    `envconfig:"OGP_DB_PORT" default:"5432"`
	User     string `envconfig:"OGP_DB_USER"`
	Password string `envconfig:"OGP_DB_PASSWORD"`
	Name     string `envconfig:"OGP_DB_NAME"`
	SSLMode  string `envconfig:"OGP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OGP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OGP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OGP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OGP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either OGP_DB_DSN or OGP_DB_HOST/OGP_DB_USER/OGP_DB_NAME must be set")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"OGP_REDIS_URL" required:"true"`
	Password     string        `envconfig:"OGP_REDIS_PASSWORD"`
	DB           int           `envconfig:"OGP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OGP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OGP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OGP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OGP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OGP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"OGP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"OGP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"OGP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"OGP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"OGP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"OGP_PUBSUB_DOMAIN_TOPIC" default:"ogp-domain-events"`
	DomainSubscription string `envconfig:"OGP_PUBSUB_DOMAIN_SUBSCRIPTION" default:"ogp-domain-events-notifier"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"OGP_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"OGP_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"OGP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"OGP_CRON_INTERVAL" default:"24h"`
	LockTTL                   time.Duration `envconfig:"OGP_CRON_LOCK_TTL" default:"25h"`
	NotificationRetentionDays int           `envconfig:"OGP_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
	OutboxRetentionDays       int           `envconfig:"OGP_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

type MailConfig struct {
	FromName    string `envconfig:"OGP_MAIL_FROM_NAME" default:"OGP Platform"`
	FromAddress string `envconfig:"OGP_MAIL_FROM_ADDRESS" default:"noreply@ogp.example"`
	ReplyTo     string `envconfig:"OGP_MAIL_REPLY_TO"`
}

type NumberingConfig struct {
	Prefix       string `envconfig:"OGP_NUMBERING_PREFIX" default:"OGP"`
	OrdinalWidth int    `envconfig:"OGP_NUMBERING_ORDINAL_WIDTH" default:"3"`
}
