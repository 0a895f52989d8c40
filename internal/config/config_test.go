package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "America/Sao_Paulo", cfg.Study.Timezone)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Hour, cfg.Cache.SessionTTL)
	assert.Empty(t, cfg.LLM.Provider)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "no LLM provider")
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearProviderKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
database:
  driver: postgres
  dsn: postgres://localhost/estudai
auth:
  jwt_secret: from-file
llm:
  provider: openai
  openai:
    api_key: sk-file
    base_url: http://gateway.local/v1
  timeout: 45s
`), 0o600))
	t.Setenv("ESTUDAI_AUTH_JWT_SECRET", "from-env")
	t.Setenv("ESTUDAI_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-file", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "http://gateway.local/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DiscoversProviderKey(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [[["), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql"},
		Auth:     AuthConfig{JWTSecret: "s"},
		Limits:   LimitsConfig{AIRequestsPerMinute: 1, AIBurst: 1},
	}
	cfg.LLM.Provider = "mock"
	assert.ErrorContains(t, cfg.Validate(), "database.driver")
}
