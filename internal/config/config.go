// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reelfeed/reelfeed-server/internal/envelope"
	"github.com/reelfeed/reelfeed-server/internal/upstream"
	"github.com/reelfeed/reelfeed-server/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Upstream UpstreamConfig
	Envelope EnvelopeConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        `env:"SERVER_PORT" validate:"required,numeric"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" validate:"min=1"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" validate:"gte=0"` // 0 disables throttling
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// UpstreamConfig holds the upstream aggregator configuration.
type UpstreamConfig struct {
	BaseURL string        `env:"UPSTREAM_BASE_URL" validate:"required,http_url"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	RPS     float64       `env:"UPSTREAM_RPS" validate:"gt=0"`
	Burst   int           `env:"UPSTREAM_BURST" validate:"gt=0"`
}

// EnvelopeConfig holds response sealing configuration.
type EnvelopeConfig struct {
	// KeyHex is a 32 byte key in hex. Empty leaves payloads in plaintext.
	KeyHex string `env:"ENVELOPE_KEY" validate:"omitempty,hexadecimal,len=64"`
	Key    []byte `json:"-" validate:"-"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("reelfeed", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")
	rateLimitRPS := fs.String("rate-limit-rps", "", "Requests per second per client IP, 0 disables (default: 10)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Burst per client IP (default: 20)")

	// Upstream flags
	upstreamURL := fs.String("upstream-url", "", "Upstream aggregator base URL")
	upstreamTimeout := fs.String("upstream-timeout", "", "Upstream request timeout (default: 20s)")
	upstreamRPS := fs.String("upstream-rps", "", "Upstream requests per second per provider (default: 5)")
	upstreamBurst := fs.String("upstream-burst", "", "Upstream burst per provider (default: 10)")

	envelopeKey := fs.String("envelope-key", "", "Hex encoded 32 byte key sealing response payloads")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins:    splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			RateLimitBurst: getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 20),
		},
		Upstream: UpstreamConfig{
			// NEXT_PUBLIC_API_BASE_URL is honoured so an existing frontend .env works unchanged.
			BaseURL: strings.TrimRight(getConfigValue(*upstreamURL, "UPSTREAM_BASE_URL",
				getConfigValue("", "NEXT_PUBLIC_API_BASE_URL", upstream.DefaultBaseURL)), "/"),
			Burst: getIntConfigValue(*upstreamBurst, "UPSTREAM_BURST", 10),
		},
		Envelope: EnvelopeConfig{
			KeyHex: getConfigValue(*envelopeKey, "ENVELOPE_KEY", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Upstream.Timeout, err = getDurationConfigValue(*upstreamTimeout, "UPSTREAM_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitRPS, err = getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.Upstream.RPS, err = getFloatConfigValue(*upstreamRPS, "UPSTREAM_RPS", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Envelope.Key, err = envelope.ParseKey(cfg.Envelope.KeyHex); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return v, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
