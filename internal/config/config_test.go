package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dir", cfg.Assets.Source)
	assert.Equal(t, "images", cfg.Assets.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow)
	assert.Equal(t, "mandela.events", cfg.Events.Exchange)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
store:
  driver: postgres
  dsn: postgres://quiz@localhost/quiz
assets:
  source: minio
  minio:
    endpoint: localhost:9000
    bucket: memories
server:
  addr: ":9090"
  rate_window: 30s
llm:
  provider: mock
`), 0o644))

	t.Setenv("MANDELA_SERVER_ADDR", ":7070")
	t.Setenv("MANDELA_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("MANDELA_ASSETS_MINIO_ACCESS_KEY", "key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://quiz@localhost/quiz", cfg.Store.DSN)
	assert.Equal(t, "minio", cfg.Assets.Source)
	assert.Equal(t, "memories", cfg.Assets.Minio.Bucket)
	assert.Equal(t, "key", cfg.Assets.Minio.AccessKey)
	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
	assert.NoError(t, cfg.RequireTelegram())

	llmCfg, ok := cfg.LLMConfig()
	assert.True(t, ok)
	assert.Equal(t, "mock", llmCfg.Provider)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.RequireTelegram(), ErrMissingTelegramToken)
}

func TestLLMConfig_ExplicitProvider(t *testing.T) {
	cfg := &Config{LLM: LLM{Provider: "openrouter", APIKey: "k", Model: "x/y"}}
	got, ok := cfg.LLMConfig()
	require.True(t, ok)
	assert.Equal(t, "k", got.OpenRouter.APIKey)
	assert.Equal(t, "x/y", got.OpenRouter.Model)
	assert.NoError(t, got.Validate())
}

func TestLLMConfig_NoneDiscovered(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	_, ok := (&Config{}).LLMConfig()
	assert.False(t, ok)
}
