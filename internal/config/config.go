package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Cart clearing policies applied when a checkout is created.
const (
	CartPolicyOnCreate  = "on_create"
	CartPolicyOnPayment = "on_payment"
)

type Config struct {
	App       App       `envPrefix:"APP_"`
	DB        DB        `envPrefix:"DB_"`
	JWT       JWT       `envPrefix:"JWT_"`
	Fawaterak Fawaterak `envPrefix:"FAWATERAK_"`
	Checkout  Checkout  `envPrefix:"CHECKOUT_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

type App struct {
	Env             string        `env:"ENV" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Port            string        `env:"PORT" envDefault:"3000"`
	CORSOrigin      string        `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`
	InternalKey     string        `env:"INTERNAL_SECRET_KEY"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DB struct {
	Host            string        `env:"HOST"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	Port            string        `env:"PORT" envDefault:"5432"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

type JWT struct {
	Secret     string        `env:"SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

// Fawaterak holds the payment provider credentials. VendorKey doubles as the
// bearer token for outbound calls and the HMAC secret for inbound webhooks.
type Fawaterak struct {
	BaseURL    string        `env:"URL" envDefault:"https://staging.fawaterk.com/api/v2"`
	VendorKey  string        `env:"VENDOR_KEY"`
	Currency   string        `env:"CURRENCY" envDefault:"EGP"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"15s"`
	SuccessURL string        `env:"SUCCESS_URL"`
	FailURL    string        `env:"FAIL_URL"`
	PendingURL string        `env:"PENDING_URL"`
}

type Checkout struct {
	CartPolicy string `env:"CART_POLICY" envDefault:"on_create"`
}

type RateLimit struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Tool is the subset of settings command-line tools such as the migrator
// need.
type Tool struct {
	App App `envPrefix:"APP_"`
	DB  DB  `envPrefix:"DB_"`
}

// LoadTool reads .env (when present) and parses only the APP_ and DB_ groups.
func LoadTool() (*Tool, error) {
	_ = godotenv.Load()

	cfg := &Tool{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse tool config: %w", err)
	}
	if cfg.DB.Host == "" {
		return nil, errors.New("DB_HOST is required")
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Checkout.CartPolicy {
	case CartPolicyOnCreate, CartPolicyOnPayment:
	default:
		errs = append(errs, fmt.Errorf("CHECKOUT_CART_POLICY must be %q or %q, got %q",
			CartPolicyOnCreate, CartPolicyOnPayment, c.Checkout.CartPolicy))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
