package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override, e.g. PROMO_DATABASE_URL.
const EnvPrefix = "PROMO_"

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" env:"SHUTDOWN_GRACE"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LEVEL"`       // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"FORMAT"`     // json|console
	Sampling bool   `yaml:"sampling" env:"SAMPLING"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"URL"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
	MinConns int32  `yaml:"min_conns" env:"MIN_CONNS"`
	Migrate  bool   `yaml:"migrate" env:"MIGRATE"`
}

type RedisConfig struct {
	URL        string        `yaml:"url" env:"URL"`
	Password   string        `yaml:"password" env:"PASSWORD"`
	DB         int           `yaml:"db" env:"DB"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	CacheTTL   time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

type SecurityConfig struct {
	JWTSecret            string        `yaml:"jwt_secret" env:"SECRET"`
	TokenTTL             time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	EnforceSingleSession bool          `yaml:"enforce_single_session" env:"ENFORCE_SINGLE_SESSION"`
	BcryptCost           int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"` // 0 picks bcrypt's default
}

type RateLimitConfig struct {
	Activations int           `yaml:"activations" env:"ACTIVATIONS"` // per user per window; 0 disables
	Window      time.Duration `yaml:"window" env:"WINDOW"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Security  SecurityConfig  `yaml:"security" envPrefix:"JWT_"`
	RateLimit RateLimitConfig `yaml:"ratelimit" envPrefix:"RATELIMIT_"`

	Runtime RuntimeConfig `yaml:"-" env:"-"`
}

// LoadConfig reads -config and -dev from the command line and delegates to Load.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()
	return Load(configPath, dev)
}

// Load reads the YAML file at path (a missing file is allowed), applies
// PROMO_* environment overrides, fills defaults and validates the result.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 10 * time.Second
	}
	if cfg.HTTP.ShutdownGrace <= 0 {
		cfg.HTTP.ShutdownGrace = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 20
	}
	cfg.Redis.SessionTTL = normalizeTTL(cfg.Redis.SessionTTL)
	cfg.Redis.CacheTTL = normalizeTTL(cfg.Redis.CacheTTL)
	if cfg.Security.TokenTTL <= 0 {
		cfg.Security.TokenTTL = cfg.Redis.SessionTTL
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if len(c.Security.JWTSecret) < 16 {
		return errors.New("security.jwt_secret must be at least 16 bytes")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return errors.New("database.min_conns must not exceed database.max_conns")
	}
	if c.RateLimit.Activations < 0 {
		return errors.New("ratelimit.activations must not be negative")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
