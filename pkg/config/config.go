package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	SessionStore           string        `mapstructure:"SESSION_STORE" validate:"required,oneof=memory redis"`
	RedisAddr              string        `mapstructure:"REDIS_ADDR" validate:"required_if=SessionStore redis"`
	RedisPassword          string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int           `mapstructure:"REDIS_DB" validate:"gte=0,lte=15"`
	SessionCookieName      string        `mapstructure:"SESSION_COOKIE_NAME" validate:"required"`
	SessionIdleTimeout     time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT" validate:"required"`
	SessionAbsoluteTimeout time.Duration `mapstructure:"SESSION_ABSOLUTE_TIMEOUT" validate:"gte=0"`
	SessionCookieSecure    bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	SessionCookiePersist   bool          `mapstructure:"SESSION_COOKIE_PERSIST"`

	CORSAllowedOrigin string `mapstructure:"CORS_ALLOWED_ORIGIN" validate:"required,url"`

	BcryptCost int `mapstructure:"BCRYPT_COST" validate:"gte=4,lte=31"`

	LoginRateLimitRPS   float64 `mapstructure:"LOGIN_RATE_LIMIT_RPS" validate:"gt=0"`
	LoginRateLimitBurst int     `mapstructure:"LOGIN_RATE_LIMIT_BURST" validate:"gte=1"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"REQUEST_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_URL",
	"SESSION_STORE",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"SESSION_COOKIE_NAME",
	"SESSION_IDLE_TIMEOUT",
	"SESSION_ABSOLUTE_TIMEOUT",
	"SESSION_COOKIE_SECURE",
	"SESSION_COOKIE_PERSIST",
	"CORS_ALLOWED_ORIGIN",
	"BCRYPT_COST",
	"LOGIN_RATE_LIMIT_RPS",
	"LOGIN_RATE_LIMIT_BURST",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_COOKIE_NAME", "BRACULA_SESSION")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "1h")
	v.SetDefault("SESSION_ABSOLUTE_TIMEOUT", "24h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_COOKIE_PERSIST", false)
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:8081")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment.
	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT":         &c.ShutdownTimeout,
		"REQUEST_TIMEOUT":          &c.RequestTimeout,
		"SESSION_IDLE_TIMEOUT":     &c.SessionIdleTimeout,
		"SESSION_ABSOLUTE_TIMEOUT": &c.SessionAbsoluteTimeout,
	}
	for key, dst := range durations {
		s := v.GetString(key)
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

// IsDevelopment reports whether the service runs in a local or test environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "test"
}
