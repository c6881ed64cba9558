package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
	"github.com/yanqian/kissan-dost/internal/infra/config"
)

func TestProvideBaselinePricesSkipsUnknownCommodities(t *testing.T) {
	cfg := &config.Config{Market: config.MarketConfig{Prices: map[string]config.QuoteConfig{
		"Wheat":  {Price: 4400, Unit: "40kg", Trend: "up"},
		"barley": {Price: 3000, Unit: "40kg", Trend: "stable"},
	}}}
	table := provideBaselinePrices(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Equal(t, advisor.PriceTable{"wheat": {Price: 4400, Unit: "40kg", Trend: advisor.TrendUp}}, table)
}

func TestProvidePriceSourceStaticWhenLiveDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	source := providePriceSource(cfg, advisor.PriceTable{"maize": {Price: 2900, Unit: "40kg", Trend: advisor.TrendUp}}, logger)

	prices := source.Prices(context.Background())
	require.Empty(t, prices.Missing())
	require.Equal(t, 2900, prices["maize"].Price)
}
