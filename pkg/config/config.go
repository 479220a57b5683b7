// Package config loads service settings from the environment, optionally
// seeded from .env files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/overlap"
	"github.com/dd0wney/workpairs/pkg/parallel"
	"github.com/dd0wney/workpairs/pkg/validation"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
// Variables already set in the process environment take precedence.
var DefaultEnvFiles = []string{".env", ".env.local"}

// ServerOptions configures the HTTP listener.
type ServerOptions struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`
}

// Addr returns the listen address.
func (s ServerOptions) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CORSOptions configures cross-origin access to /api routes.
type CORSOptions struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8000"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

// EngineOptions configures the overlap engine.
type EngineOptions struct {
	Strategy            string `env:"ENGINE_STRATEGY" envDefault:"auto"`
	Workers             int    `env:"ENGINE_WORKERS" envDefault:"0"`
	BruteForceThreshold int    `env:"ENGINE_BRUTE_FORCE_THRESHOLD" envDefault:"512"`
}

// LogOptions configures the logger.
type LogOptions struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Configuration is the complete service configuration.
type Configuration struct {
	Server ServerOptions
	CORS   CORSOptions
	Engine EngineOptions
	Log    LogOptions
}

// LoadEnv loads the env files that exist and returns how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads envFiles, parses the environment and validates the result.
func Load(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "load env files")
	}
	return Parse()
}

// Reload re-reads envFiles, letting their values replace variables loaded
// earlier, and parses the environment again.
func Reload(envFiles ...string) (*Configuration, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			return nil, errors.Wrapf(err, "reload %s", file)
		}
	}
	return Parse()
}

// Parse builds a Configuration from the process environment alone.
func Parse() (*Configuration, error) {
	return ParseWith(env.Options{})
}

// ParseWith builds a Configuration using explicit env options, which lets
// tests supply an environment map.
func ParseWith(opts env.Options) (*Configuration, error) {
	c := &Configuration{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	c.normalise()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) normalise() {
	c.Engine.Strategy = strings.ToLower(strings.TrimSpace(c.Engine.Strategy))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// Validate reports every invalid setting.
func (c *Configuration) Validate() error {
	strategies := make([]string, 0, len(overlap.Strategies()))
	for _, s := range overlap.Strategies() {
		strategies = append(strategies, string(s))
	}

	return validation.NewConfigValidator("Configuration").
		RangeInt("Server.Port", c.Server.Port, 1, 65535).
		MinDuration("Server.ReadTimeout", c.Server.ReadTimeout, time.Second).
		MinDuration("Server.WriteTimeout", c.Server.WriteTimeout, time.Second).
		MinDuration("Server.ShutdownTimeout", c.Server.ShutdownTimeout, time.Second).
		PositiveInt64("Server.MaxUploadSize", c.Server.MaxUploadSize).
		OneOf("Engine.Strategy", c.Engine.Strategy, strategies).
		RangeInt("Engine.Workers", c.Engine.Workers, 0, parallel.MaxWorkers).
		Positive("Engine.BruteForceThreshold", c.Engine.BruteForceThreshold).
		OneOf("Log.Level", c.Log.Level, []string{"debug", "info", "warn", "warning", "error"}).
		OneOf("Log.Format", c.Log.Format, []string{string(logging.FormatJSON), string(logging.FormatText)}).
		Custom("CORS.AllowedOrigins", c.validateOrigins).
		Validate()
}

func (c *Configuration) validateOrigins() error {
	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" {
			if c.CORS.AllowCredentials {
				return errors.New(`wildcard origin "*" cannot be combined with credentials`)
			}
			continue
		}
		if err := validation.ValidateStruct(struct {
			Origin string `validate:"url"`
		}{origin}); err != nil {
			return err
		}
	}
	return nil
}

// Workers returns the engine pool size with 0 resolved to GOMAXPROCS.
func (c *Configuration) Workers() int {
	return validation.DefaultOrInt(c.Engine.Workers, parallel.DefaultWorkers())
}

// Strategy returns the configured engine strategy.
func (c *Configuration) Strategy() overlap.Strategy {
	s, err := overlap.ParseStrategy(c.Engine.Strategy)
	if err != nil {
		return overlap.StrategyAuto
	}
	return s
}

// LoggerOptions maps the log settings onto logging.Options.
func (c *Configuration) LoggerOptions() logging.Options {
	return logging.Options{
		Writer: os.Stdout,
		Level:  logging.ParseLevel(c.Log.Level),
		Format: logging.Format(c.Log.Format),
	}
}

// Logger builds the service logger.
func (c *Configuration) Logger() logging.Logger {
	return logging.New(c.LoggerOptions())
}
