package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Weather WeatherConfig `yaml:"weather"`
	Market  MarketConfig  `yaml:"market"`
	Advisor AdvisorConfig `yaml:"advisor"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	ShutdownGrace  time.Duration `yaml:"shutdownGrace"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
}

// LLMConfig contains completion provider settings. Groq speaks the OpenAI API.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	TextModel   string        `yaml:"textModel"`
	VisionModel string        `yaml:"visionModel"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WeatherConfig controls the Open-Meteo client.
type WeatherConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Timezone string        `yaml:"timezone"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MarketConfig selects the mandi price source.
type MarketConfig struct {
	Prices map[string]QuoteConfig `yaml:"prices"`
	Redis  RedisConfig            `yaml:"redis"`
	MaxAge time.Duration          `yaml:"maxAge"`
}

// QuoteConfig overrides one baseline commodity.
type QuoteConfig struct {
	Price int    `yaml:"price"`
	Unit  string `yaml:"unit"`
	Trend string `yaml:"trend"`
}

// RedisConfig contains connection information for the live price table.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Key     string `yaml:"key"`
}

// AdvisorConfig tunes prompt construction.
type AdvisorConfig struct {
	HonorImageMediaType bool `yaml:"honorImageMediaType"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HTTP.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_TEXT_MODEL"); v != "" {
		cfg.LLM.TextModel = v
	}
	if v := os.Getenv("LLM_VISION_MODEL"); v != "" {
		cfg.LLM.VisionModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_TIMEZONE"); v != "" {
		cfg.Weather.Timezone = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("MARKET_REDIS_ENABLED"); v != "" {
		cfg.Market.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MARKET_REDIS_ADDR"); v != "" {
		cfg.Market.Redis.Addr = v
	}
	if v := os.Getenv("MARKET_REDIS_KEY"); v != "" {
		cfg.Market.Redis.Key = v
	}
	if v := os.Getenv("MARKET_MAX_AGE"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Market.MaxAge = parsed
		}
	}
	if v := os.Getenv("ADVISOR_HONOR_IMAGE_MEDIA_TYPE"); v != "" {
		cfg.Advisor.HonorImageMediaType = v == "1" || strings.EqualFold(v, "true")
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8000",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   90 * time.Second,
			ShutdownGrace:  10 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 10 << 20,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			TextModel:   "llama-3.3-70b-versatile",
			VisionModel: "llama-3.2-90b-vision-preview",
			Temperature: 0.3,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:  "https://api.open-meteo.com/v1/forecast",
			Timezone: "Asia/Karachi",
			Timeout:  5 * time.Second,
		},
		Market: MarketConfig{
			MaxAge: 24 * time.Hour,
			Redis: RedisConfig{
				Enabled: false,
				Key:     "market:prices",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.maxUploadBytes must be positive")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey cannot be empty (set GROQ_API_KEY or LLM_API_KEY)")
	}
	if strings.TrimSpace(c.LLM.TextModel) == "" {
		return errors.New("llm.textModel cannot be empty")
	}
	if strings.TrimSpace(c.LLM.VisionModel) == "" {
		return errors.New("llm.visionModel cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.maxTokens must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.Weather.BaseURL == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Market.MaxAge < 0 {
		return errors.New("market.maxAge cannot be negative")
	}
	for name, quote := range c.Market.Prices {
		if quote.Price <= 0 || strings.TrimSpace(quote.Unit) == "" {
			return fmt.Errorf("market.prices.%s needs a positive price and a unit", name)
		}
		switch quote.Trend {
		case "up", "down", "stable":
		default:
			return fmt.Errorf("market.prices.%s.trend must be up, down or stable", name)
		}
	}
	if c.Market.Redis.Enabled && strings.TrimSpace(c.Market.Redis.Addr) == "" {
		return errors.New("market.redis.addr cannot be empty when the live price table is enabled")
	}
	if c.Market.Redis.Enabled && strings.TrimSpace(c.Market.Redis.Key) == "" {
		return errors.New("market.redis.key cannot be empty when the live price table is enabled")
	}
	return nil
}
