package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("WEATHER_TIMEOUT", "2s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://kissan.example, https://admin.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "gsk-test", cfg.LLM.APIKey)
	require.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.TextModel)
	require.Equal(t, "llama-3.2-90b-vision-preview", cfg.LLM.VisionModel)
	require.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	require.Equal(t, 2000, cfg.LLM.MaxTokens)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 2*time.Second, cfg.Weather.Timeout)
	require.Equal(t, "Asia/Karachi", cfg.Weather.Timezone)
	require.Equal(t, []string{"https://kissan.example", "https://admin.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
llm:
  apiKey: from-file
  textModel: custom-text
market:
  prices:
    wheat:
      price: 4400
      unit: 40kg
      trend: up
  redis:
    enabled: true
    addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("MARKET_REDIS_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.LLM.APIKey)
	require.Equal(t, "custom-text", cfg.LLM.TextModel)
	require.Equal(t, 4400, cfg.Market.Prices["wheat"].Price)
	require.True(t, cfg.Market.Redis.Enabled)
	require.Equal(t, "market:prices", cfg.Market.Redis.Key)
}

func TestLoadMarketOverridesFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("MARKET_REDIS_ENABLED", "true")
	t.Setenv("MARKET_REDIS_ADDR", "valkey:6379")
	t.Setenv("MARKET_REDIS_KEY", "mandi:punjab")
	t.Setenv("MARKET_MAX_AGE", "6h")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Market.Redis.Enabled)
	require.Equal(t, "valkey:6379", cfg.Market.Redis.Addr)
	require.Equal(t, "mandi:punjab", cfg.Market.Redis.Key)
	require.Equal(t, 6*time.Hour, cfg.Market.MaxAge)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.LLM.APIKey = "key"
		return cfg
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.LLM.APIKey = ""
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Market.Prices = map[string]QuoteConfig{"wheat": {Price: 4200, Unit: "40kg", Trend: "sideways"}}
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Market.Redis.Enabled = true
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Market.Redis = RedisConfig{Enabled: true, Addr: "localhost:6379", Key: " "}
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Weather.Timeout = 0
	require.Error(t, cfg.Validate())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
