// Package config loads process configuration from config.toml and
// RAUGUPATIS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix             = "RAUGUPATIS"
	DefaultSessionSecret  = "change_me_in_production"
	minimumSecretLength   = 32
	defaultMaxUploadBytes = 10 << 20
)

const (
	SessionStoreSQL   = "sql"
	SessionStoreRedis = "redis"

	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	Storage  StorageConfig
	S3       S3Config
	Log      LogConfig
	HTTP     HTTPConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Environment string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path     string
	LogLevel string
}

type SessionConfig struct {
	Secret       string
	Store        string
	TTL          time.Duration
	RememberTTL  time.Duration
	CookieSecure bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend        string
	UploadsDir     string
	MaxUploadBytes int64
}

type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// Prefix is prepended to every object key inside the bucket.
	Prefix string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type HTTPConfig struct {
	CORSAllowOrigins []string
}

type MetricsConfig struct {
	Enabled bool
}

func (cfg *Config) IsProduction() bool {
	return strings.EqualFold(cfg.App.Environment, "production")
}

// Load reads config.toml from the usual search paths when present and
// overlays RAUGUPATIS_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/raugupatis")
	return load(v)
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Environment: v.GetString("app.environment"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Path:     v.GetString("database.path"),
			LogLevel: v.GetString("database.log_level"),
		},
		Session: SessionConfig{
			Secret:       v.GetString("session.secret"),
			Store:        v.GetString("session.store"),
			TTL:          v.GetDuration("session.ttl"),
			RememberTTL:  v.GetDuration("session.remember_ttl"),
			CookieSecure: v.GetBool("session.cookie_secure"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Backend:        v.GetString("storage.backend"),
			UploadsDir:     v.GetString("storage.uploads_dir"),
			MaxUploadBytes: v.GetInt64("storage.max_upload_bytes"),
		},
		S3: S3Config{
			Bucket:       v.GetString("s3.bucket"),
			Region:       v.GetString("s3.region"),
			Endpoint:     v.GetString("s3.endpoint"),
			AccessKey:    v.GetString("s3.access_key"),
			SecretKey:    v.GetString("s3.secret_key"),
			UsePathStyle: v.GetBool("s3.use_path_style"),
			Prefix:       v.GetString("s3.prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0:3000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/raugupatis.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = DefaultSessionSecret
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = SessionStoreSQL
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.RememberTTL == 0 {
		cfg.Session.RememberTTL = 120 * time.Hour
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageBackendLocal
	}
	if cfg.Storage.UploadsDir == "" {
		cfg.Storage.UploadsDir = "data/uploads"
	}
	if cfg.Storage.MaxUploadBytes == 0 {
		cfg.Storage.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		return errors.New("session.secret is required")
	}
	if cfg.IsProduction() {
		if cfg.Session.Secret == DefaultSessionSecret {
			return errors.New("session.secret must be changed in production")
		}
		if len(cfg.Session.Secret) < minimumSecretLength {
			return fmt.Errorf("session.secret must be at least %d characters in production", minimumSecretLength)
		}
	}

	switch cfg.Session.Store {
	case SessionStoreSQL, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session.store %q", cfg.Session.Store)
	}

	switch cfg.Storage.Backend {
	case StorageBackendLocal:
	case StorageBackendS3:
		if cfg.S3.Bucket == "" {
			return errors.New("s3.bucket is required when storage.backend is s3")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	if cfg.Session.RememberTTL < cfg.Session.TTL {
		return errors.New("session.remember_ttl must not be shorter than session.ttl")
	}
	return nil
}
