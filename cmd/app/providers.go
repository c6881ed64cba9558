package main

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
	"github.com/yanqian/kissan-dost/internal/infra/config"
	"github.com/yanqian/kissan-dost/internal/infra/llm/chatgpt"
	"github.com/yanqian/kissan-dost/internal/infra/market"
	"github.com/yanqian/kissan-dost/internal/infra/weather/openmeteo"
)

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{
		TextModel:           cfg.LLM.TextModel,
		VisionModel:         cfg.LLM.VisionModel,
		Temperature:         cfg.LLM.Temperature,
		MaxTokens:           cfg.LLM.MaxTokens,
		WeatherTimeout:      cfg.Weather.Timeout,
		LLMTimeout:          cfg.LLM.Timeout,
		HonorImageMediaType: cfg.Advisor.HonorImageMediaType,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideWeatherClient(cfg *config.Config) *openmeteo.Client {
	return openmeteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timezone, cfg.Weather.Timeout)
}

func provideBaselinePrices(cfg *config.Config, logger *slog.Logger) advisor.PriceTable {
	table := make(advisor.PriceTable, len(cfg.Market.Prices))
	for name, quote := range cfg.Market.Prices {
		key := strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(advisor.Commodities, key) {
			logger.Warn("ignoring unknown commodity in market.prices", "commodity", name)
			continue
		}
		table[key] = advisor.Quote{Price: quote.Price, Unit: quote.Unit, Trend: advisor.Trend(quote.Trend)}
	}
	return table
}

func providePriceSource(cfg *config.Config, baseline advisor.PriceTable, logger *slog.Logger) advisor.PriceSource {
	fallback := market.NewStaticSource(baseline)
	if !cfg.Market.Redis.Enabled {
		logger.Info("live prices disabled, serving static mandi table")
		return fallback
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to static prices", "error", err)
		return fallback
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to static prices", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to static prices", "error", err)
		client.Close()
		return fallback
	}
	logger.Info("live prices enabled", "addr", cfg.Market.Redis.Addr, "key", cfg.Market.Redis.Key)
	return market.NewValkeySource(client, cfg.Market.Redis.Key, cfg.Market.MaxAge, baseline, logger)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Market.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Market.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Market.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
