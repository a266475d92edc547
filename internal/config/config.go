// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments understood by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration.
type Config struct {
	// server
	Env           string `yaml:"env"`
	HTTPPort      int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
	TrustProxy    bool   `yaml:"trust_proxy"`
	StaticDir     string `yaml:"static_dir"`

	// upstream
	UpstreamURL     string        `yaml:"upstream_url"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	UpstreamRPS     float64       `yaml:"upstream_rps"`
	UpstreamBurst   int           `yaml:"upstream_burst"`

	// client rate limiting
	RateLimitMax    int           `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`

	// logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Env:             EnvDevelopment,
		HTTPPort:        5000,
		AllowedOrigin:   "http://localhost:5000",
		UpstreamURL:     "https://leetcode.com/graphql/",
		UpstreamTimeout: 10 * time.Second,
		UpstreamRPS:     5,
		UpstreamBurst:   10,
		RateLimitMax:    30,
		RateLimitWindow: time.Minute,
		LogLevel:        "info",
	}
}

// Load reads configuration. If CONFIG_FILE is set the YAML file is applied
// over the defaults first; environment variables win over both.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file over the defaults without consulting
// the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("APP_ENV", c.Env)
	c.HTTPPort = getEnvInt("PORT", c.HTTPPort)
	c.AllowedOrigin = getEnv("ALLOWED_ORIGIN", c.AllowedOrigin)
	c.TrustProxy = getEnvBool("TRUST_PROXY", c.TrustProxy)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)

	c.UpstreamURL = getEnv("LEETCODE_GRAPHQL_URL", c.UpstreamURL)
	c.UpstreamTimeout = getEnvSeconds("UPSTREAM_TIMEOUT_SECONDS", c.UpstreamTimeout)
	c.UpstreamRPS = getEnvFloat("UPSTREAM_RPS", c.UpstreamRPS)
	c.UpstreamBurst = getEnvInt("UPSTREAM_BURST", c.UpstreamBurst)

	c.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax)
	c.RateLimitWindow = getEnvSeconds("RATE_LIMIT_WINDOW_SECONDS", c.RateLimitWindow)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("port out of range: %d", c.HTTPPort)
	}
	if err := validateOrigin(c.AllowedOrigin); err != nil {
		return err
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream url %q", c.UpstreamURL)
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream timeout must be positive")
	}
	if c.UpstreamRPS <= 0 || c.UpstreamBurst < 1 {
		return errors.New("upstream rps and burst must be positive")
	}
	if c.RateLimitMax < 1 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// validateOrigin accepts a bare scheme://host[:port] origin.
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid allowed origin %q", origin)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("allowed origin %q must not contain a path", origin)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvSeconds reads a whole number of seconds.
func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultVal
}
