package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/revocation"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/service"
	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/jwtx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file read before the environment.
const ConfigFileEnv = "BROKERAGE_CONFIG_FILE"

type Config struct {
	SecretKey                string `yaml:"secret_key"`                  // Required: JWT signing secret
	Algorithm                string `yaml:"algorithm"`                   // HS256, HS384 or HS512 (default: HS256)
	AccessTokenExpireSeconds int    `yaml:"access_token_expire_seconds"` // default: 3600
	RefreshTokenExpireDays   int    `yaml:"refresh_token_expire_days"`   // default: 7
	Issuer                   string `yaml:"issuer"`                      // iss claim (default: brokerage)

	HTTPAddr       string `yaml:"http_addr"`       // default: :8080
	DatabaseDriver string `yaml:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseFile   string `yaml:"database_file"`   // sqlite file (default: brokerage.db)
	DatabaseURL    string `yaml:"database_url"`    // postgres DSN

	Revocation string                 `yaml:"revocation"` // memory, redis or none (default: memory)
	Redis      revocation.RedisConfig `yaml:"redis"`

	ResetTokenExpireMinutes       int    `yaml:"reset_token_expire_minutes"`       // default: 60
	VerificationCodeExpireMinutes int    `yaml:"verification_code_expire_minutes"` // default: 10
	PublicBaseURL                 string `yaml:"public_base_url"`                  // reset link base
	BootstrapToken                string `yaml:"bootstrap_token"`                  // Optional: enables /bootstrap

	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // default: 1h
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout"`      // default: 15s

	Env       string `yaml:"env"`        // dev, staging, prod (default: dev)
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default: info)
	LogFormat string `yaml:"log_format"` // json or text (default: json)
	Version   string `yaml:"version"`

	RateLimits httpx.Limits `yaml:"rate_limits"`
}

// DefaultConfig returns every default except the secret, which has none.
func DefaultConfig() Config {
	return Config{
		Algorithm:                     "HS256",
		AccessTokenExpireSeconds:      int(jwtx.DefaultAccessTokenTTL / time.Second),
		RefreshTokenExpireDays:        int(jwtx.DefaultRefreshTokenTTL / (24 * time.Hour)),
		Issuer:                        "brokerage",
		HTTPAddr:                      ":8080",
		DatabaseDriver:                "sqlite",
		DatabaseFile:                  "brokerage.db",
		Revocation:                    "memory",
		Redis:                         revocation.RedisConfig{Addr: "localhost:6379"},
		ResetTokenExpireMinutes:       60,
		VerificationCodeExpireMinutes: 10,
		PublicBaseURL:                 "https://aaifinancials.com",
		HousekeepingInterval:          time.Hour,
		ShutdownTimeout:               15 * time.Second,
		Env:                           "dev",
		LogLevel:                      "info",
		LogFormat:                     "json",
		Version:                       BuildVersion,
		RateLimits:                    httpx.DefaultLimits(),
	}
}

// LoadConfig layers a .env file, the YAML file named by
// BROKERAGE_CONFIG_FILE and the process environment over the defaults. The
// environment wins.
func LoadConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	e := &envReader{}

	c.SecretKey = e.getString("SECRET_KEY", c.SecretKey)
	c.Algorithm = e.getString("ALGORITHM", c.Algorithm)
	c.AccessTokenExpireSeconds = e.getInt("ACCESS_TOKEN_EXPIRE_SECONDS", c.AccessTokenExpireSeconds)
	c.RefreshTokenExpireDays = e.getInt("REFRESH_TOKEN_EXPIRE_DAYS", c.RefreshTokenExpireDays)
	c.Issuer = e.getString("BROKERAGE_ISSUER", c.Issuer)

	c.HTTPAddr = e.getString("BROKERAGE_HTTP_ADDR", c.HTTPAddr)
	c.DatabaseDriver = e.getString("BROKERAGE_DATABASE_DRIVER", c.DatabaseDriver)
	c.DatabaseFile = e.getString("BROKERAGE_DATABASE_FILE", c.DatabaseFile)
	c.DatabaseURL = e.getString("BROKERAGE_DATABASE_URL", c.DatabaseURL)

	c.Revocation = e.getString("BROKERAGE_REVOCATION", c.Revocation)
	c.Redis.Addr = e.getString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = e.getString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = e.getInt("REDIS_DB", c.Redis.DB)

	c.ResetTokenExpireMinutes = e.getInt("RESET_TOKEN_EXPIRE_MINUTES", c.ResetTokenExpireMinutes)
	c.VerificationCodeExpireMinutes = e.getInt("VERIFICATION_CODE_EXPIRE_MINUTES", c.VerificationCodeExpireMinutes)
	c.PublicBaseURL = e.getString("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.BootstrapToken = e.getString("BOOTSTRAP_TOKEN", c.BootstrapToken)

	c.HousekeepingInterval = e.getDuration("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)
	c.ShutdownTimeout = e.getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.Env = e.getString("ENV", c.Env)
	c.LogLevel = e.getString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = e.getString("LOG_FORMAT", c.LogFormat)
	c.Version = e.getString("VERSION", c.Version)

	c.RateLimits.Strict = e.getLimit("RATELIMIT_STRICT", c.RateLimits.Strict)
	c.RateLimits.Moderate = e.getLimit("RATELIMIT_MODERATE", c.RateLimits.Moderate)
	c.RateLimits.Public = e.getLimit("RATELIMIT_PUBLIC", c.RateLimits.Public)
	c.RateLimits.TrustProxyHeaders = e.getBool("TRUST_PROXY_HEADERS", c.RateLimits.TrustProxyHeaders)
	if e.getBool("RATELIMIT_DISABLED", false) {
		c.RateLimits = httpx.Limits{TrustProxyHeaders: c.RateLimits.TrustProxyHeaders}
	}

	return errors.Join(e.errs...)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if _, err := jwtx.NewCodec(jwtx.Config{Secret: "algorithm-check", Algorithm: c.Algorithm}); err != nil {
		errs = append(errs, fmt.Errorf("ALGORITHM %q: %w", c.Algorithm, err))
	}
	if c.AccessTokenExpireSeconds <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_SECONDS must be positive"))
	}
	if c.RefreshTokenExpireDays <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.ResetTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.VerificationCodeExpireMinutes <= 0 {
		errs = append(errs, errors.New("VERIFICATION_CODE_EXPIRE_MINUTES must be positive"))
	}

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("BROKERAGE_DATABASE_FILE is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("BROKERAGE_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("BROKERAGE_DATABASE_DRIVER %q: want sqlite or postgres", c.DatabaseDriver))
	}

	switch c.Revocation {
	case "memory", "none":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for redis revocation"))
		}
	default:
		errs = append(errs, fmt.Errorf("BROKERAGE_REVOCATION %q: want memory, redis or none", c.Revocation))
	}

	return errors.Join(errs...)
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireSeconds) * time.Second
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// TokenConfig is the lifetime pair handed to the session issuer.
func (c Config) TokenConfig() service.TokenConfig {
	return service.TokenConfig{AccessTTL: c.AccessTTL(), RefreshTTL: c.RefreshTTL()}
}

func (c Config) CodecConfig() jwtx.Config {
	return jwtx.Config{Secret: c.SecretKey, Algorithm: c.Algorithm, Issuer: c.Issuer}
}

// envReader reads typed overrides and remembers every value it could not
// parse so LoadConfig reports them together.
type envReader struct {
	errs []error
}

func (e *envReader) getString(key, current string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return current
}

func (e *envReader) getInt(key string, current int) int {
	value := os.Getenv(key)
	if value == "" {
		return current
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: not an integer: %q", key, value))
		return current
	}
	return n
}

func (e *envReader) getBool(key string, current bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return current
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: not a boolean: %q", key, value))
		return current
	}
	return b
}

func (e *envReader) getDuration(key string, current time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return current
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	e.errs = append(e.errs, fmt.Errorf("%s: not a duration: %q", key, value))
	return current
}

// getLimit reads <prefix>_REQUESTS, <prefix>_WINDOW and <prefix>_BURST.
func (e *envReader) getLimit(prefix string, current httpx.Limit) httpx.Limit {
	current.Requests = e.getInt(prefix+"_REQUESTS", current.Requests)
	current.Window = e.getDuration(prefix+"_WINDOW", current.Window)
	current.Burst = e.getInt(prefix+"_BURST", current.Burst)
	return current
}
