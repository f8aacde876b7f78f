package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"invoicing/internal/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of both binaries; each reads the parts it needs
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
}

type AppConfig struct {
	Env     string
	Port    string
	TaxMode model.TaxMode
}

// BackendConfig locates the invoice REST API used by the web UI
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	URL      string // full DSN; overrides the discrete fields
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type HTTPConfig struct {
	CORSOrigins []string
	MaxBodySize int64
}

// Load reads an optional .env file, then environment variables, then defaults.
// defaultPort differs per binary.
func Load(defaultPort string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("TAX_MODE", string(model.TaxModeSplit))
	v.SetDefault("BACKEND_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MAX_BODY_SIZE", 1<<20)

	cfg := &Config{
		App: AppConfig{
			Env:     v.GetString("APP_ENV"),
			Port:    v.GetString("PORT"),
			TaxMode: model.ParseTaxMode(v.GetString("TAX_MODE")),
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		HTTP: HTTPConfig{
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
			MaxBodySize: v.GetInt64("MAX_BODY_SIZE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.DBName
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL %q", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.Backend.Timeout)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
