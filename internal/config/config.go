package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings holds all configuration for the application.
type Settings struct {
	Application ApplicationSettings `yaml:"application"`
	Database    DatabaseSettings    `yaml:"database"`
	EmailClient EmailClientSettings `yaml:"email_client"`
}

// ApplicationSettings holds HTTP server configuration.
type ApplicationSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL is the public URL of this service, used to build
	// confirmation links in outbound email.
	BaseURL string `yaml:"base_url"`
}

// Addr returns the listen address in host:port form.
func (s ApplicationSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseSettings holds PostgreSQL connection configuration.
type DatabaseSettings struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     Secret `yaml:"password"`
	DatabaseName string `yaml:"database_name"`
	RequireSSL   bool   `yaml:"require_ssl"`
}

// DSN builds a lib/pq connection string. The password is revealed here,
// at the single point of use.
func (s DatabaseSettings) DSN() string {
	sslMode := "prefer"
	if s.RequireSSL {
		sslMode = "require"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Username, s.Password.Reveal()),
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   "/" + s.DatabaseName,
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// EmailClientSettings holds notification provider configuration.
type EmailClientSettings struct {
	BaseURL             string `yaml:"base_url"`
	SenderEmail         string `yaml:"sender_email"`
	AuthorizationToken  Secret `yaml:"authorization_token"`
	TimeoutMilliseconds int    `yaml:"timeout_milliseconds"`
}

// Timeout returns the configured request timeout as a duration.
func (s EmailClientSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMilliseconds) * time.Millisecond
}

// Environment selects which environment-specific configuration file is
// layered over base.yaml.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvProduction Environment = "production"
)

// ParseEnvironment validates an APP_ENVIRONMENT value.
func ParseEnvironment(raw string) (Environment, error) {
	switch Environment(raw) {
	case EnvLocal, EnvProduction:
		return Environment(raw), nil
	default:
		return "", fmt.Errorf("unsupported environment %q: use %q or %q", raw, EnvLocal, EnvProduction)
	}
}

// Load reads layered configuration from dir: base.yaml first, then the
// environment-specific file. Later files win per key.
func Load(dir string, env Environment) (*Settings, error) {
	var cfg Settings
	for _, name := range []string{"base.yaml", string(env) + ".yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	}

	// Defaults
	if cfg.Application.Port == 0 {
		cfg.Application.Port = 8000
	}
	if cfg.Application.Host == "" {
		cfg.Application.Host = "127.0.0.1"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.EmailClient.TimeoutMilliseconds == 0 {
		cfg.EmailClient.TimeoutMilliseconds = 10000
	}

	return &cfg, nil
}

// LoadFromEnv loads layered configuration with environment variable
// overrides applied last. A .env file is loaded first if present, so
// secrets can live in .env locally and in real env vars in production.
// The environment is chosen by APP_ENVIRONMENT (default "local").
func LoadFromEnv(dir string) (*Settings, error) {
	// No error if missing
	_ = godotenv.Load()

	envName := os.Getenv("APP_ENVIRONMENT")
	if envName == "" {
		envName = string(EnvLocal)
	}
	env, err := ParseEnvironment(envName)
	if err != nil {
		return nil, err
	}

	cfg, err := Load(dir, env)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("APP_APPLICATION__HOST"); v != "" {
		cfg.Application.Host = v
	}
	if v := os.Getenv("APP_APPLICATION__PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("APP_APPLICATION__PORT: %w", err)
		}
		cfg.Application.Port = port
	}
	if v := os.Getenv("APP_APPLICATION__BASE_URL"); v != "" {
		cfg.Application.BaseURL = v
	}
	if v := os.Getenv("APP_DATABASE__HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("APP_DATABASE__PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("APP_DATABASE__PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv("APP_DATABASE__USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("APP_DATABASE__PASSWORD"); v != "" {
		cfg.Database.Password = NewSecret(v)
	}
	if v := os.Getenv("APP_DATABASE__DATABASE_NAME"); v != "" {
		cfg.Database.DatabaseName = v
	}
	if v := os.Getenv("APP_EMAIL_CLIENT__BASE_URL"); v != "" {
		cfg.EmailClient.BaseURL = v
	}
	if v := os.Getenv("APP_EMAIL_CLIENT__SENDER_EMAIL"); v != "" {
		cfg.EmailClient.SenderEmail = v
	}
	if v := os.Getenv("APP_EMAIL_CLIENT__AUTHORIZATION_TOKEN"); v != "" {
		cfg.EmailClient.AuthorizationToken = NewSecret(v)
	}

	return cfg, nil
}
