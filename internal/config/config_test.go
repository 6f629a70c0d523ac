package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENV", "LOG_LEVEL", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"UPSTREAM_BASE_URL", "NEXT_PUBLIC_API_BASE_URL", "UPSTREAM_TIMEOUT", "UPSTREAM_RPS",
		"UPSTREAM_BURST", "ENVELOPE_KEY",
	} {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return "--env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 10.0, cfg.Server.RateLimitRPS, 1e-9)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.Equal(t, "https://api.sansekai.my.id/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Upstream.Timeout)
	assert.InDelta(t, 5.0, cfg.Upstream.RPS, 1e-9)
	assert.Equal(t, 10, cfg.Upstream.Burst)
	assert.Nil(t, cfg.Envelope.Key)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("UPSTREAM_RPS", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,")

	cfg, err := Load([]string{noEnvFile(t), "--port", "9100", "--upstream-timeout", "5s"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "flag beats env")
	assert.InDelta(t, 2.5, cfg.Upstream.RPS, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_UpstreamURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_API_BASE_URL", "https://mirror.test/api/")

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.test/api", cfg.Upstream.BaseURL)

	t.Setenv("UPSTREAM_BASE_URL", "https://primary.test/api")
	cfg, err = Load([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://primary.test/api", cfg.Upstream.BaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local overrides\nLOG_LEVEL=debug\nexport SERVER_PORT='7070'\nENVELOPE_KEY=\"" +
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load([]string{"--env-file", path})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Len(t, cfg.Envelope.Key, 32)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{"bad environment", map[string]string{"ENV": "test"}, nil, "ENV"},
		{"bad log level", map[string]string{"LOG_LEVEL": "trace"}, nil, "LOG_LEVEL"},
		{"bad port", nil, []string{"--port", "http"}, "SERVER_PORT"},
		{"relative upstream", map[string]string{"UPSTREAM_BASE_URL": "api.test"}, nil, "UPSTREAM_BASE_URL"},
		{"zero upstream rps", map[string]string{"UPSTREAM_RPS": "0"}, nil, "UPSTREAM_RPS"},
		{"unparsable rps", map[string]string{"UPSTREAM_RPS": "fast"}, nil, "UPSTREAM_RPS"},
		{"bad timeout", map[string]string{"UPSTREAM_TIMEOUT": "soon"}, nil, "UPSTREAM_TIMEOUT"},
		{"short envelope key", map[string]string{"ENVELOPE_KEY": "abcd"}, nil, "ENVELOPE_KEY"},
		{"unknown flag", nil, []string{"--nope"}, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(append([]string{noEnvFile(t)}, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsDomainError(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "production"},
		Logger:   LoggerConfig{Level: "info"},
		Server:   ServerConfig{Port: "8080", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second},
		Upstream: UpstreamConfig{BaseURL: "https://api.test", Timeout: time.Second, RPS: 1, Burst: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "CORS_ORIGINS")

	cfg.Server.CORSOrigins = []string{"*"}
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsProduction())
}
