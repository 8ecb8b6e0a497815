package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration, read via Viper from the
// environment with optional config-file overrides.
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	DB    DBConfig
	Redis RedisConfig
	Minio MinioConfig
	JWT   JWTConfig
	Jobs  JobsConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Port int
}

// DBConfig holds the PostgreSQL connection string.
type DBConfig struct {
	URL string
}

// RedisConfig holds cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig holds object storage settings for product images.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret     string
	TTLSeconds int
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	LowStockThreshold    int
	LowStockScanInterval string // gocron duration string, e.g. "1h"
}

// Load reads configuration from the environment (and an optional
// config.yaml next to the binary). DATABASE_URL is the only required
// setting; everything else has development defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "trackwise")
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("http.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.accesskey", "minioadmin")
	v.SetDefault("minio.secretkey", "minioadmin")
	v.SetDefault("minio.usessl", false)
	v.SetDefault("minio.bucket", "trackwise-product-images")
	v.SetDefault("jwt.ttlseconds", 86400)
	v.SetDefault("jobs.lowstockthreshold", 10)
	v.SetDefault("jobs.lowstockscaninterval", "1h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional env names used in deployment take precedence over
	// the dotted keys.
	_ = v.BindEnv("db.url", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("http.port", "PORT")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.accesskey", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio.secretkey", "MINIO_SECRET_KEY")
	_ = v.BindEnv("minio.usessl", "MINIO_USE_SSL")
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("app.loglevel", "LOG_LEVEL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("app.env"),
			Name:     v.GetString("app.name"),
			LogLevel: v.GetString("app.loglevel"),
		},
		HTTP: HTTPConfig{
			Port: v.GetInt("http.port"),
		},
		DB: DBConfig{
			URL: v.GetString("db.url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.accesskey"),
			SecretKey: v.GetString("minio.secretkey"),
			UseSSL:    v.GetBool("minio.usessl"),
			Bucket:    v.GetString("minio.bucket"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			TTLSeconds: v.GetInt("jwt.ttlseconds"),
		},
		Jobs: JobsConfig{
			LowStockThreshold:    v.GetInt("jobs.lowstockthreshold"),
			LowStockScanInterval: v.GetString("jobs.lowstockscaninterval"),
		},
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
