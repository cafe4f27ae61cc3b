package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/carebloom-backend/internal/data/db"
	"github.com/yungbote/carebloom-backend/internal/observability"
	"github.com/yungbote/carebloom-backend/internal/platform/gemini"
)

const configPathEnv = "CAREBLOOM_CONFIG_PATH"

type HTTPConfig struct {
	Host              string        `yaml:"host" env:"HOST"`
	Port              int           `yaml:"port" env:"PORT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	CORSOrigins       []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Host), c.Port)
}

// Config is resolved in layers: built-in defaults, then the optional YAML file
// named by CAREBLOOM_CONFIG_PATH, then the process environment (with .env
// files loaded into it first).
type Config struct {
	LogMode string `yaml:"log_mode" env:"LOG_MODE"`

	HTTP   HTTPConfig               `yaml:"http"`
	DB     db.Config                `yaml:"db"`
	Gemini gemini.Config            `yaml:"gemini"`
	Otel   observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		HTTP: HTTPConfig{
			Port:              5000,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"*"},
		},
		DB: db.Config{
			Driver: db.DriverSQLite,
			Path:   "chat_history.db",
		},
		Gemini: gemini.Config{
			Model:   gemini.DefaultModel,
			Timeout: 60 * time.Second,
		},
		Otel: observability.OtelConfig{
			ServiceName: "carebloom",
			Environment: "development",
			SampleRatio: 0.1,
		},
	}
}

// LoadConfig reads .env from the working directory (if present) and resolves
// the full configuration.
func LoadConfig() (Config, error) {
	return loadConfig([]string{".env"})
}

func loadConfig(envFiles []string) (Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// Load never overrides variables already present in the environment.
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.LogMode = strings.TrimSpace(c.LogMode)
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = gemini.DefaultModel
	}
	origins := c.HTTP.CORSOrigins[:0]
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.CORSOrigins = origins
}

func (c Config) Validate() error {
	var problems []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		problems = append(problems, fmt.Errorf("PORT out of range: %d", c.HTTP.Port))
	}
	if c.Gemini.Timeout < 0 {
		problems = append(problems, fmt.Errorf("GEMINI_TIMEOUT must not be negative"))
	}
	if err := c.DB.Validate(); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(problems...))
	}
	return nil
}
