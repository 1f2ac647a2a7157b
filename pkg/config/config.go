package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Attendance    AttendanceConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"ONESTOPLEASE_APP_ENV" required:"true"`
	Port         string `envconfig:"ONESTOPLEASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ONESTOPLEASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ONESTOPLEASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ONESTOPLEASE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ONESTOPLEASE_DB_DSN"`
	Driver string `envconfig:"ONESTOPLEASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ONESTOPLEASE_DB_HOST"`
	LegacyPort     int    `envconfig:"ONESTOPLEASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ONESTOPLEASE_DB_USER"`
	LegacyPassword string `envconfig:"ONESTOPLEASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ONESTOPLEASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ONESTOPLEASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ONESTOPLEASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ONESTOPLEASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ONESTOPLEASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ONESTOPLEASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ONESTOPLEASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ONESTOPLEASE_REDIS_ADDR"`
	Password     string        `envconfig:"ONESTOPLEASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ONESTOPLEASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ONESTOPLEASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ONESTOPLEASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ONESTOPLEASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ONESTOPLEASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ONESTOPLEASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ONESTOPLEASE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ONESTOPLEASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ONESTOPLEASE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ONESTOPLEASE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ONESTOPLEASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ONESTOPLEASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ONESTOPLEASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ONESTOPLEASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ONESTOPLEASE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ONESTOPLEASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ONESTOPLEASE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ONESTOPLEASE_AUTO_MIGRATE" default:"false"`
}

// AttendanceConfig tunes agent login-session bookkeeping.
type AttendanceConfig struct {
	InactivityTimeout time.Duration `envconfig:"ONESTOPLEASE_ATTENDANCE_INACTIVITY_TIMEOUT" default:"20m"`
	SweepInterval     time.Duration `envconfig:"ONESTOPLEASE_ATTENDANCE_SWEEP_INTERVAL" default:"1m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ONESTOPLEASE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ONESTOPLEASE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ONESTOPLEASE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"ONESTOPLEASE_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"ONESTOPLEASE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"ONESTOPLEASE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"ONESTOPLEASE_MAX_UPLOAD_MB" default:"25"`
}

type PubSubConfig struct {
	ContributionTopic        string `envconfig:"ONESTOPLEASE_PUBSUB_CONTRIBUTION_TOPIC" default:"osl-contribution-events"`
	ContributionSubscription string `envconfig:"ONESTOPLEASE_PUBSUB_CONTRIBUTION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ONESTOPLEASE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ONESTOPLEASE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ONESTOPLEASE_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
