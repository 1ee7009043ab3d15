package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		ClientURL       string `yaml:"client_url"`
		ShutdownTimeout int    `yaml:"shutdown_timeout_sec"`
		MaxUploadMB     int64  `yaml:"max_upload_mb"`
	} `yaml:"server"`

	Logger struct {
		Level         string `yaml:"level"`
		InfoLogsPath  string `yaml:"info_logs_path"`
		ErrorLogsPath string `yaml:"error_logs_path"`
	} `yaml:"logger"`

	Database struct {
		DSN             string `yaml:"url"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime_min"`
		AutoMigrate     bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Redis struct {
		URL       string `yaml:"url"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"redis"`

	Auth struct {
		CookieName              string `yaml:"cookie_name"`
		RegisteredEmailCookie   string `yaml:"registered_email_cookie"`
		CookieSecret            string `yaml:"cookie_secret"`
		SessionTTLMinutes       int    `yaml:"session_ttl_min"`
		AccountVerificationTTL  int    `yaml:"account_verification_ttl_min"`
		ResetPasswordTTL        int    `yaml:"reset_password_ttl_min"`
		RegisteredEmailTTL      int    `yaml:"registered_email_ttl_min"`
		AccountVerificationPath string `yaml:"account_verification_path"`
		ResetPasswordPath       string `yaml:"reset_password_path"`
		FirstAdminEmail         string `yaml:"first_admin_email"`
		FirstAdminPassword      string `yaml:"first_admin_password"`
	} `yaml:"auth"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		TimeoutSec   int    `yaml:"timeout_sec"`
		Disabled     bool   `yaml:"disabled"`
	} `yaml:"email"`

	Storage struct {
		Type       string `yaml:"type"`      // local, minio
		BasePath   string `yaml:"base_path"` // For local storage
		BaseURL    string `yaml:"base_url"`  // Public URL base
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"`
		UseSSL     bool   `yaml:"use_ssl"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"storage"`

	Upload struct {
		MaxFileSize   int64 `yaml:"max_file_size"`
		ImageQuality  int   `yaml:"image_quality"`
		ImageMaxWidth int   `yaml:"image_max_width"`
	} `yaml:"upload"`
}

var AppConfig *Config

// LoadConfig читает .env (если есть), затем YAML из CONFIG_PATH и
// применяет переопределения из окружения.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

// Default - значения по умолчанию, поверх которых ложится YAML
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 4000
	cfg.Server.Env = EnvDevelopment
	cfg.Server.ClientURL = "http://localhost:3000"
	cfg.Server.ShutdownTimeout = 15
	cfg.Server.MaxUploadMB = 32

	cfg.Logger.Level = "info"

	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 30

	cfg.Redis.URL = "redis://localhost:6379/0"
	cfg.Redis.TimeoutMs = 2000

	cfg.Auth.CookieName = "session"
	cfg.Auth.RegisteredEmailCookie = "registeredEmail"
	cfg.Auth.SessionTTLMinutes = 1440
	cfg.Auth.AccountVerificationTTL = 1440
	cfg.Auth.ResetPasswordTTL = 15
	cfg.Auth.RegisteredEmailTTL = 1440
	cfg.Auth.AccountVerificationPath = "/account-verification"
	cfg.Auth.ResetPasswordPath = "/reset-password"

	cfg.Email.SMTPPort = 587
	cfg.Email.FromName = "Netowork"
	cfg.Email.TimeoutSec = 10

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/uploads"
	cfg.Storage.TimeoutSec = 30

	cfg.Upload.MaxFileSize = 10 * 1024 * 1024
	cfg.Upload.ImageQuality = 85
	cfg.Upload.ImageMaxWidth = 1600

	return &cfg
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.Database.DSN)
	setString("REDIS_URL", &cfg.Redis.URL)
	setString("SERVER_ENV", &cfg.Server.Env)
	setString("CLIENT_URL", &cfg.Server.ClientURL)
	setString("COOKIE_SECRET", &cfg.Auth.CookieSecret)
	setString("SMTP_PASSWORD", &cfg.Email.SMTPPassword)
	setString("STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	setString("STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	setString("FIRST_ADMIN_EMAIL", &cfg.Auth.FirstAdminEmail)
	setString("FIRST_ADMIN_PASSWORD", &cfg.Auth.FirstAdminPassword)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// Validate проверяет диапазоны TTL и обязательные поля
func (c *Config) Validate() error {
	var errs []error

	checkRange := func(name string, v, min, max int) {
		if v < min || v > max {
			errs = append(errs, fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, v))
		}
	}

	checkRange("auth.session_ttl_min", c.Auth.SessionTTLMinutes, 60, 43800)
	checkRange("auth.account_verification_ttl_min", c.Auth.AccountVerificationTTL, 60, 1440)
	checkRange("auth.reset_password_ttl_min", c.Auth.ResetPasswordTTL, 10, 15)
	checkRange("auth.registered_email_ttl_min", c.Auth.RegisteredEmailTTL, 60, 1440)

	if len(c.Auth.CookieSecret) < 32 {
		errs = append(errs, errors.New("auth.cookie_secret must be at least 32 characters"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Server.ClientURL == "" {
		errs = append(errs, errors.New("server.client_url is required"))
	}
	switch c.Server.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("server.env must be one of development, production, test, got %q", c.Server.Env))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLMinutes) * time.Minute
}

func (c *Config) VerificationTTL() time.Duration {
	return time.Duration(c.Auth.AccountVerificationTTL) * time.Minute
}

func (c *Config) ResetPasswordTTL() time.Duration {
	return time.Duration(c.Auth.ResetPasswordTTL) * time.Minute
}

func (c *Config) RegisteredEmailTTL() time.Duration {
	return time.Duration(c.Auth.RegisteredEmailTTL) * time.Minute
}

func (c *Config) RedisTimeout() time.Duration {
	return time.Duration(c.Redis.TimeoutMs) * time.Millisecond
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func GetConfig() *Config {
	return AppConfig
}
