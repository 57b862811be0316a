// Package config defines the triage service configuration.
package config

import (
	"time"

	pkgconfig "github.com/janvedha/triage/pkg/config"
)

// Default configuration values.
const (
	defaultServiceName     = "triage"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultDBHost          = "localhost"
	defaultDBPort          = "5432"
	defaultDBUser          = "postgres"
	defaultDBName          = "triage"
	defaultDBSSLMode       = "disable"
	defaultRedisAddr       = "localhost:6379"
	defaultCacheTTLHours   = 24
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultLLMModel        = "gpt-4o-mini"
	defaultLLMTimeoutSec   = 30
	defaultLLMMaxTokens    = 1024
	defaultLLMTemperature  = 0.2
	defaultMinConfidence   = 0.6
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds all configuration for the triage service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"TRIAGE_PORT" yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"   yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     string `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// RedisConfig holds Redis configuration for the classification cache.
type RedisConfig struct {
	Enabled                bool          `yaml:"enabled"`
	Addr                   string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password               string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database               int           `yaml:"database"`
	ClassificationCacheTTL time.Duration `yaml:"classification_cache_ttl"`
}

// LLMConfig holds language-model backend configuration.
type LLMConfig struct {
	APIKey      string        `env:"OPENAI_API_KEY"  yaml:"api_key"`
	BaseURL     string        `env:"OPENAI_BASE_URL" yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PipelineConfig holds pipeline policy settings.
type PipelineConfig struct {
	// MinConfidence rejects classifications below this confidence with a
	// clarification request.
	MinConfidence float64 `yaml:"min_confidence"`
	// CatalogPath optionally overrides the compiled-in catalogue.
	CatalogPath string `env:"TRIAGE_CATALOG_PATH" yaml:"catalog_path"`
	// ForecastEnabled turns the spike forecaster on.
	ForecastEnabled bool `yaml:"forecast_enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
	Output string `yaml:"output"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return pkgconfig.LoadWithDefaults[Config](path, setDefaults)
}

// Default returns a configuration with all defaults applied and no file.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setLLMDefaults(&cfg.LLM)
	setPipelineDefaults(&cfg.Pipeline)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == "" {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = defaultRedisAddr
	}
	if r.ClassificationCacheTTL == 0 {
		r.ClassificationCacheTTL = defaultCacheTTLHours * time.Hour
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = defaultLLMMaxTokens
	}
	if l.Temperature == 0 {
		l.Temperature = defaultLLMTemperature
	}
	if l.Timeout == 0 {
		l.Timeout = defaultLLMTimeoutSec * time.Second
	}
}

func setPipelineDefaults(p *PipelineConfig) {
	if p.MinConfidence == 0 {
		p.MinConfidence = defaultMinConfidence
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
