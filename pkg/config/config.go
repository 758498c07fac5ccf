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
	Solver       SolverConfig
	Dispatch     DispatchConfig
	PubSub       PubSubConfig
	GCP          GCPConfig
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
	Env          string `envconfig:"WASTEFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"WASTEFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WASTEFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WASTEFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind        string `envconfig:"WASTEFLOW_SERVICE_KIND" default:"api"`
	MetricsPort string `envconfig:"WASTEFLOW_METRICS_PORT" default:"9090"`
}

type DBConfig struct {
	DSN    string `envconfig:"WASTEFLOW_DB_DSN"`
	Driver string `envconfig:"WASTEFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WASTEFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"WASTEFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WASTEFLOW_DB_USER"`
	LegacyPassword string `envconfig:"WASTEFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"WASTEFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"WASTEFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WASTEFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WASTEFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WASTEFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WASTEFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WASTEFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WASTEFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"WASTEFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"WASTEFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WASTEFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WASTEFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WASTEFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WASTEFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WASTEFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SolverConfig points at the external VRP solver endpoint. The timeout bounds a
// single solve call; a slow solver fails the category, not the whole process.
type SolverConfig struct {
	URL     string        `envconfig:"WASTEFLOW_SOLVER_URL" required:"true"`
	Timeout time.Duration `envconfig:"WASTEFLOW_SOLVER_TIMEOUT" default:"30s"`
}

type DispatchConfig struct {
	RoundInterval     time.Duration `envconfig:"WASTEFLOW_DISPATCH_ROUND_INTERVAL" default:"2m"`
	RoundLockTTL      time.Duration `envconfig:"WASTEFLOW_DISPATCH_ROUND_LOCK_TTL" default:"5m"`
	MaxOrdersPerRound int           `envconfig:"WASTEFLOW_DISPATCH_MAX_ORDERS_PER_ROUND" default:"500"`
}

type PubSubConfig struct {
	TelemetryTopic        string `envconfig:"WASTEFLOW_PUBSUB_TELEMETRY_TOPIC" default:"wf-vehicle-telemetry"`
	TelemetrySubscription string `envconfig:"WASTEFLOW_PUBSUB_TELEMETRY_SUBSCRIPTION" required:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WASTEFLOW_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"WASTEFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WASTEFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WASTEFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WASTEFLOW_AUTO_MIGRATE" default:"false"`
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
