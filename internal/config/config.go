package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	StoreDriver    string `mapstructure:"store_driver"`
	DatabaseURL    string `mapstructure:"database_url"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	SeedDemo       bool   `mapstructure:"leads_seed_demo"`
	RequireCountry bool   `mapstructure:"leads_require_country"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`

	UploadDriver  string        `mapstructure:"upload_driver"`
	UploadBaseURL string        `mapstructure:"upload_base_url"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout"`
	S3Bucket      string        `mapstructure:"s3_bucket"`
	S3Region      string        `mapstructure:"s3_region"`
	S3Endpoint    string        `mapstructure:"s3_endpoint"`
	S3PathStyle   bool          `mapstructure:"s3_path_style"`
	S3AccessKey   string        `mapstructure:"s3_access_key_id"`
	S3SecretKey   string        `mapstructure:"s3_secret_access_key"`

	RabbitMQURL string `mapstructure:"rabbitmq_url"`

	MailHost         string `mapstructure:"mail_host"`
	MailPort         int    `mapstructure:"mail_port"`
	MailUser         string `mapstructure:"mail_user"`
	MailPass         string `mapstructure:"mail_pass"`
	MailFrom         string `mapstructure:"mail_from"`
	AdminNotifyEmail string `mapstructure:"admin_notify_email"`

	CRMAPIURL   string `mapstructure:"crm_api_url"`
	CRMAPIToken string `mapstructure:"crm_api_token"`

	AdminAuthEnabled  bool          `mapstructure:"admin_auth_enabled"`
	AdminEmail        string        `mapstructure:"admin_email"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	JWTTTL            time.Duration `mapstructure:"jwt_ttl"`

	DigestInterval time.Duration `mapstructure:"digest_interval"`
	DigestMinAge   time.Duration `mapstructure:"digest_min_age"`
}

var defaults = map[string]any{
	"app_env":               "dev",
	"log_level":             "info",
	"http_addr":             ":8080",
	"store_driver":          "memory",
	"database_url":          "",
	"sqlite_path":           "leads.db",
	"leads_seed_demo":       false,
	"leads_require_country": false,
	"cors_allowed_origins":  "http://localhost:3000",
	"rate_limit_per_minute": 10,
	"upload_driver":         "static",
	"upload_base_url":       "",
	"upload_timeout":        "30s",
	"s3_bucket":             "",
	"s3_region":             "us-east-1",
	"s3_endpoint":           "",
	"s3_path_style":         false,
	"s3_access_key_id":      "",
	"s3_secret_access_key":  "",
	"rabbitmq_url":          "",
	"mail_host":             "",
	"mail_port":             587,
	"mail_user":             "",
	"mail_pass":             "",
	"mail_from":             "hello@tryalma.ai",
	"admin_notify_email":    "",
	"crm_api_url":           "",
	"crm_api_token":         "",
	"admin_auth_enabled":    false,
	"admin_email":           "admin@tryalma.ai",
	"admin_password_hash":   "",
	"jwt_secret":            "",
	"jwt_ttl":               "12h",
	"digest_interval":       "0s",
	"digest_min_age":        "24h",
}

// Load reads .env (when present) and the process environment. Every key is
// the lower-case form of its environment variable, e.g. http_addr <- HTTP_ADDR.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSAllowedOrigins = cleanList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be memory, postgres or sqlite, got %q", c.StoreDriver))
	}

	switch c.UploadDriver {
	case "static":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when UPLOAD_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_DRIVER must be static or s3, got %q", c.UploadDriver))
	}

	if c.AdminAuthEnabled && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when ADMIN_AUTH_ENABLED=true"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if c.UploadTimeout <= 0 {
		errs = append(errs, errors.New("UPLOAD_TIMEOUT must be positive"))
	}
	if c.DigestInterval > 0 && (c.MailHost == "" || c.AdminNotifyEmail == "") {
		errs = append(errs, errors.New("DIGEST_INTERVAL needs MAIL_HOST and ADMIN_NOTIFY_EMAIL"))
	}

	return errors.Join(errs...)
}

func cleanList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
