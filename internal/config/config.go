package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	ErrMissingDSN       = errors.New("postgres dsn is not configured")
	ErrMissingJWTSecret = errors.New("jwt secret is not configured")
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BasePaths    []string
	MaxUploadMB  int64
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type CacheConfig struct {
	ProfilesTTL time.Duration
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	SweepGrace    time.Duration
	SweepSchedule string
}

type BootstrapConfig struct {
	UsersFile string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Database         DatabaseConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Cache            CacheConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Worker           WorkerConfig
	Bootstrap        BootstrapConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

// Validate reports the first required setting that is missing. A failed
// validation does not stop the API process; requests are answered with a
// configuration error instead.
func (c *AppConfig) Validate() error {
	if c.Database.Driver != "memory" && strings.TrimSpace(c.Postgres.DSN) == "" {
		return ErrMissingDSN
	}
	if strings.TrimSpace(c.Security.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := newViper("config", "GALLERY")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func newViper(name, envPrefix string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.basepaths", []string{"/", "/.netlify/functions"})
	v.SetDefault("http.maxuploadmb", 10)

	v.SetDefault("database.driver", "postgres")

	// Required values get empty defaults so environment overrides are seen
	// by Unmarshal.
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.profilesttl", "5m")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "gallery-photos")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.tokenttl", "2h")

	v.SetDefault("worker.stream", "gallery:tasks")
	v.SetDefault("worker.group", "gallery-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")
	v.SetDefault("worker.sweepgrace", "24h")
	v.SetDefault("worker.sweepschedule", "0 30 3 * * *")

	v.SetDefault("bootstrap.usersfile", "")

	v.SetDefault("logging.level", "")
}
