//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/kissan-dost/internal/bootstrap"
	"github.com/yanqian/kissan-dost/internal/domain/advisor"
	"github.com/yanqian/kissan-dost/internal/infra/config"
	"github.com/yanqian/kissan-dost/internal/infra/llm/chatgpt"
	"github.com/yanqian/kissan-dost/internal/infra/llm/tokens"
	"github.com/yanqian/kissan-dost/internal/infra/weather/openmeteo"
	httpiface "github.com/yanqian/kissan-dost/internal/interface/http"
	"github.com/yanqian/kissan-dost/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAdvisorConfig,
		provideChatGPTClient,
		provideWeatherClient,
		provideBaselinePrices,
		providePriceSource,
		tokens.NewEstimator,
		advisor.NewService,
		wire.Bind(new(advisor.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(advisor.WeatherClient), new(*openmeteo.Client)),
		wire.Bind(new(advisor.TokenEstimator), new(*tokens.Estimator)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
