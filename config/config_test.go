package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "EMAIL_USER", "EMAIL_PASS", "DATABASE_URL", "APP_ENV"} {
		t.Setenv(k, "")
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(writeConfig(t, "http:\n  addr: \":5000\"\ngrpc:\n  addr: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.WS.PingEvery)
	assert.Equal(t, int64(1<<20), cfg.WS.ReadLimit)
	assert.Equal(t, 2, cfg.Rooms.MinParticipants)
	assert.Equal(t, 10, cfg.Rooms.MaxParticipants)
	assert.Equal(t, "flyprep", cfg.Logging.Service)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Enabled())
	assert.Equal(t, 3, cfg.Interview.QuestionCount)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("EMAIL_USER", "team@example.com")
	t.Setenv("EMAIL_PASS", "app-pass")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/flyprep")
	t.Setenv("APP_ENV", "prod")

	cfg, err := LoadFrom(writeConfig(t, `
http:
  addr: ":5000"
  readTimeout: 3s
grpc:
  addr: ":9090"
mail:
  host: smtp.example.com
`))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "team@example.com", cfg.Mail.From)
	assert.Equal(t, "team@example.com", cfg.Mail.Recipient)
	assert.Equal(t, "postgres://u:p@db/flyprep", cfg.Postgres.DSN)
	assert.Equal(t, "prod", cfg.Logging.Env)
}

func TestLoadFrom_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := LoadFrom(writeConfig(t, "grpc:\n  addr: \":9090\"\n"))
	assert.ErrorContains(t, err, "http.addr is required")

	_, err = LoadFrom(writeConfig(t, "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\nrooms:\n  minParticipants: 5\n  maxParticipants: 3\n"))
	assert.ErrorContains(t, err, "invalid participant bounds")

	t.Setenv("EMAIL_USER", "u")
	t.Setenv("EMAIL_PASS", "p")
	_, err = LoadFrom(writeConfig(t, "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\n"))
	assert.ErrorContains(t, err, "mail.host is required")

	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Len(t, cfg.HTTP.AllowedOrigins, 2)
}
