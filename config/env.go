// Package config loads the application configuration.
//
// Values are resolved in this order (later wins):
//
//	built-in defaults → config/app.json → .env → process environment
//
// The result is an immutable *Config passed explicitly to every component:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	db, err := database.Connect(ctx, cfg)
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "config/app.json"
	DefaultEnvPath    = ".env"
)

// Config is the fully resolved application configuration.
type Config struct {
	AppEnv   string `mapstructure:"app_env"   validate:"required"`
	AppPort  string `mapstructure:"app_port"  validate:"required,numeric"`
	GRPCPort string `mapstructure:"grpc_port" validate:"omitempty,numeric"`

	DBDriver      string `mapstructure:"db_driver"      validate:"oneof=mongo memory"`
	MongoURI      string `mapstructure:"mongo_uri"      validate:"required_if=DBDriver mongo"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_if=DBDriver mongo"`

	JWTSecret string        `mapstructure:"jwt_secret" validate:"required"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"    validate:"gt=0"`

	CacheDriver   string        `mapstructure:"cache_driver"   validate:"oneof=redis memory"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"      validate:"gte=0"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`

	StorageDisk      string `mapstructure:"storage_disk"       validate:"oneof=local s3"`
	StorageLocalRoot string `mapstructure:"storage_local_root"`
	StorageURL       string `mapstructure:"storage_url"`
	S3Bucket         string `mapstructure:"s3_bucket"          validate:"required_if=StorageDisk s3"`
	S3Region         string `mapstructure:"s3_region"`
	S3Key            string `mapstructure:"s3_key"`
	S3Secret         string `mapstructure:"s3_secret"`
	S3Endpoint       string `mapstructure:"s3_endpoint"`
	S3URL            string `mapstructure:"s3_url"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	LogMongo     bool     `mapstructure:"log_mongo"`
	RateLimit    int      `mapstructure:"rate_limit"     validate:"gte=0"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes" validate:"gt=0"`
	Workers      int      `mapstructure:"workers"        validate:"gt=0"`
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string { return ":" + c.AppPort }

func defaults() map[string]any {
	return map[string]any{
		"app_env":            "local",
		"app_port":           "8080",
		"grpc_port":          "",
		"db_driver":          "mongo",
		"mongo_uri":          "mongodb://localhost:27017",
		"mongo_database":     "storefront",
		"jwt_secret":         "change-me-in-production",
		"jwt_ttl":            "24h",
		"cache_driver":       "memory",
		"cache_ttl":          "5m",
		"redis_addr":         "localhost:6379",
		"redis_password":     "",
		"storage_disk":       "local",
		"storage_local_root": "storage",
		"storage_url":        "http://localhost:8080/storage",
		"s3_bucket":          "",
		"s3_region":          "us-east-1",
		"s3_key":             "",
		"s3_secret":          "",
		"s3_endpoint":        "",
		"s3_url":             "",
		"kafka_brokers":      "",
		"kafka_topic":        "storefront.events",
		"log_mongo":          false,
		"rate_limit":         200,
		"cors_origins":       "*",
		"max_body_bytes":     4 << 20,
		"workers":            8,
	}
}

// Load reads configuration from the default file locations.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath, DefaultEnvPath)
}

// LoadFrom reads configuration from the given JSON file and dotenv file.
// Either path may point to a missing file.
func LoadFrom(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		// godotenv.Load never overrides variables already set in the process.
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", envPath, err)
		}
	}

	v := viper.New()
	for key, val := range defaults() {
		v.SetDefault(key, val)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: decode %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.CORSOrigins = compact(cfg.CORSOrigins)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
