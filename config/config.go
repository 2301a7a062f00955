package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    int           `mapstructure:"http_port"`
	GRPCPort    int           `mapstructure:"grpc_port"` // 0 disables the gRPC listener
	LogLevel    string        `mapstructure:"log_level"`
	ServiceName string        `mapstructure:"service_name"`
	JwtSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"` // 0 issues tokens without expiry
	BcryptCost  int           `mapstructure:"bcrypt_cost"`

	Database DatabaseConfig `mapstructure:"database"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Consul   ConsulConfig   `mapstructure:"consul"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres or sqlite
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type UploadsConfig struct {
	Backend            string   `mapstructure:"backend"` // disk or gcs
	Dir                string   `mapstructure:"dir"`
	URLPrefix          string   `mapstructure:"url_prefix"`
	MaxBytes           int64    `mapstructure:"max_bytes"`
	AllowedTypes       []string `mapstructure:"allowed_types"`
	GCSBucket          string   `mapstructure:"gcs_bucket"`
	GCSCredentialsFile string   `mapstructure:"gcs_credentials_file"`
}

type ConsulConfig struct {
	Address string `mapstructure:"address"` // empty disables self-registration
}

type CORSConfig struct {
	AllowedDomains []string `mapstructure:"allowed_domains"`
}

const defaultJwtSecret = "default-very-insecure-secret-key"

var AppConfig Config

// Load reads config.yaml (from . or ./config), a .env file and PINBOARD_* environment
// variables, in increasing order of precedence.
func Load() (Config, error) {
	// .env only seeds the process environment; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PINBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 5000)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "pinboard")
	v.SetDefault("jwt_secret", defaultJwtSecret) // CHANGE THIS IN PRODUCTION
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("bcrypt_cost", 10)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.url", "pinboard:pinboard@tcp(127.0.0.1:3306)/pinboard?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("uploads.backend", "disk")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.url_prefix", "/uploads/")
	v.SetDefault("uploads.max_bytes", 5<<20)
	v.SetDefault("uploads.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	v.SetDefault("uploads.gcs_bucket", "")
	v.SetDefault("uploads.gcs_credentials_file", "")

	v.SetDefault("consul.address", "")
	v.SetDefault("cors.allowed_domains", []string{})
}

// InsecureSecret reports whether the built-in development JWT secret is in use.
func (c Config) InsecureSecret() bool {
	return c.JwtSecret == defaultJwtSecret
}

func InitConfig() {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("fatal error loading config: %w", err))
	}
	AppConfig = cfg
}
