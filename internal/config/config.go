package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Mail     MailConfig     `yaml:"mail"`
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Seed     SeedConfig     `yaml:"seed"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"                    env-default:"8080"`
	GinMode         string        `yaml:"gin_mode"         env:"GIN_MODE"                env-default:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"      env:"DB_DRIVER"      env-default:"mysql"`
	Host       string `yaml:"host"        env:"DB_HOST"        env-default:"localhost"`
	Port       string `yaml:"port"        env:"DB_PORT"        env-default:"3306"`
	User       string `yaml:"user"        env:"DB_USER"        env-default:"cseuser"`
	Password   string `yaml:"password"    env:"DB_PASSWORD"    env-default:"csepassword"`
	Name       string `yaml:"name"        env:"DB_NAME"        env-default:"cse_council"`
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"cse.db"`
}

// RedisConfig selects the session store. An empty host falls back to
// signed cookies.
type RedisConfig struct {
	Host     string `yaml:"host"      env:"REDIS_HOST"`
	Port     string `yaml:"port"      env:"REDIS_PORT"      env-default:"6379"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"  env:"SESSION_SECRET"  env-default:"default-secret-key-change-me"`
	MaxAge time.Duration `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"168h"`
}

// MailConfig holds SMTP settings. With no SMTP host the mailer only logs
// outgoing messages.
type MailConfig struct {
	SMTPHost    string `yaml:"smtp_host"   env:"SMTP_HOST"`
	SMTPPort    int    `yaml:"smtp_port"   env:"SMTP_PORT"        env-default:"587"`
	Username    string `yaml:"username"    env:"SMTP_USERNAME"`
	Password    string `yaml:"password"    env:"SMTP_PASSWORD"`
	From        string `yaml:"from"        env:"MAIL_FROM"        env-default:"cse@example.org"`
	FromName    string `yaml:"from_name"   env:"MAIL_FROM_NAME"   env-default:"CSE"`
	Concurrency int    `yaml:"concurrency" env:"MAIL_CONCURRENCY" env-default:"4"`
}

type AppConfig struct {
	PublicURL        string `yaml:"public_url"        env:"APP_PUBLIC_URL"        env-default:"http://localhost:3000"`
	OrganizationName string `yaml:"organization_name" env:"APP_ORGANIZATION_NAME" env-default:"Comité Social et Économique"`
	Timezone         string `yaml:"timezone"          env:"APP_TIMEZONE"          env-default:"Europe/Paris"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// SeedConfig describes the initial president account created by the seed command.
type SeedConfig struct {
	PresidentEmail    string `yaml:"president_email"    env:"SEED_PRESIDENT_EMAIL"`
	PresidentName     string `yaml:"president_name"     env:"SEED_PRESIDENT_NAME"     env-default:"Président du CSE"`
	PresidentPassword string `yaml:"president_password" env:"SEED_PRESIDENT_PASSWORD"`
	PresidentCSERole  string `yaml:"president_cse_role" env:"SEED_PRESIDENT_CSE_ROLE" env-default:"Président du CSE"`
}

// Load reads configuration from an optional YAML file and the environment.
// An explicit path must exist; otherwise CONFIG_PATH is consulted and, when
// unset, only environment variables and defaults are used.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("CONFIG_PATH")
		explicitPath = path != ""
	}

	if explicitPath {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values cleanenv cannot express with tags.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be one of mysql, postgres, sqlite (got %q)", c.Database.Driver)
	}

	if c.IsProduction() && len(c.Session.Secret) < 32 {
		return fmt.Errorf("session.secret must be at least 32 characters in release mode (got %d)", len(c.Session.Secret))
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}

	if c.Mail.Concurrency < 1 {
		return fmt.Errorf("mail.concurrency must be >= 1 (got %d)", c.Mail.Concurrency)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.GinMode == "release"
}

// Location returns the timezone meeting dates are interpreted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
