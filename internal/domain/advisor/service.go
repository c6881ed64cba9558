package advisor

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/kissan-dost/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/kissan-dost/pkg/errors"
	"github.com/yanqian/kissan-dost/pkg/util"
)

// Service exposes the advisory capabilities of Kissan Dost.
type Service interface {
	Advise(ctx context.Context, req Request) (Response, error)
	Prices(ctx context.Context) PriceTable
	Weather(ctx context.Context, lat, lon *float64) (WeatherSnapshot, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type WeatherClient interface {
	Current(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// PriceSource always returns a complete table (see Commodities).
type PriceSource interface {
	Prices(ctx context.Context) PriceTable
}

// TokenEstimator approximates usage when the provider reports none.
type TokenEstimator interface {
	Estimate(messages []chatgpt.Message, completion string) int
}

var supportedLanguages = map[string]struct{}{
	"ur": {},
	"en": {},
	"pa": {},
	"sd": {},
}

type service struct {
	cfg       Config
	client    ChatClient
	weather   WeatherClient
	prices    PriceSource
	estimator TokenEstimator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the advisor domain.
func NewService(cfg Config, weather WeatherClient, prices PriceSource, client ChatClient, estimator TokenEstimator, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		client:    client,
		weather:   weather,
		prices:    prices,
		estimator: estimator,
		logger:    logger.With("component", "advisor.service"),
		now:       util.NowUTC,
	}
}

func (s *service) Advise(ctx context.Context, req Request) (Response, error) {
	start := s.now()

	req, lat, lon, err := normalizeRequest(req)
	if err != nil {
		return Response{}, err
	}
	query := Resolve(req)
	model := s.cfg.modelFor(query)

	weather, prices := s.aggregate(ctx, lat, lon)
	messages := assemble(DefaultInstruction, buildContext(weather, prices), query, s.cfg.HonorImageMediaType)

	completion, err := s.invoke(ctx, model, messages)
	if err != nil {
		return Response{}, err
	}

	res := s.normalize(completion, messages, weather, prices, model)
	res.ElapsedMS = util.ElapsedMillis(start, s.now())
	s.logger.Info("advisory completed",
		"model", model,
		"modality", query.Modality().String(),
		"language", req.Language,
		"weather_available", weather != nil,
		"tokens", res.LatencyMS,
		"elapsed_ms", res.ElapsedMS,
	)
	return res, nil
}

func (s *service) Prices(ctx context.Context) PriceTable {
	return s.prices.Prices(ctx).Clone()
}

func (s *service) Weather(ctx context.Context, lat, lon *float64) (WeatherSnapshot, error) {
	latitude, longitude, err := resolveCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}
	return s.fetchWeather(ctx, latitude, longitude), nil
}

// aggregate fetches weather and prices concurrently. Weather failures are
// absorbed into a nil snapshot.
func (s *service) aggregate(ctx context.Context, lat, lon float64) (WeatherSnapshot, PriceTable) {
	var (
		g       errgroup.Group
		weather WeatherSnapshot
		prices  PriceTable
	)
	g.Go(func() error {
		weather = s.fetchWeather(ctx, lat, lon)
		return nil
	})
	g.Go(func() error {
		prices = s.prices.Prices(ctx)
		return nil
	})
	_ = g.Wait()
	return weather, prices
}

func (s *service) fetchWeather(ctx context.Context, lat, lon float64) WeatherSnapshot {
	if s.cfg.WeatherTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WeatherTimeout)
		defer cancel()
	}
	snapshot, err := s.weather.Current(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("weather unavailable", "lat", lat, "lon", lon, "timeout", isTimeout(err), "error", err)
		return nil
	}
	if len(snapshot) == 0 {
		return nil
	}
	return snapshot
}

func (s *service) invoke(ctx context.Context, model string, messages []chatgpt.Message) (chatgpt.ChatCompletionResponse, error) {
	if s.cfg.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LLMTimeout)
		defer cancel()
	}
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("completion request failed",
			"model", model,
			"status", chatgpt.StatusCode(err),
			"quota_exceeded", chatgpt.IsQuotaExceeded(err),
			"error", err,
		)
		if isTimeout(err) {
			return chatgpt.ChatCompletionResponse{}, apperrors.Wrap(apperrors.CodeCompletionTimeout, "completion provider timed out", err)
		}
		return chatgpt.ChatCompletionResponse{}, apperrors.Wrap(apperrors.CodeCompletionFailed, "completion request failed", err)
	}
	if len(completion.Choices) == 0 {
		return chatgpt.ChatCompletionResponse{}, apperrors.Wrap(apperrors.CodeCompletionFailed, "completion provider returned no choices", nil)
	}
	return completion, nil
}

func (s *service) normalize(completion chatgpt.ChatCompletionResponse, messages []chatgpt.Message, weather WeatherSnapshot, prices PriceTable, model string) Response {
	text := completion.Choices[0].Message.Content
	usage := completion.Usage.Total()
	if completion.Usage.IsZero() && s.estimator != nil {
		usage = s.estimator.Estimate(messages, text)
	}
	return Response{
		Response:  text,
		Weather:   weather,
		Prices:    prices.Clone(),
		Model:     model,
		LatencyMS: usage,
	}
}

func normalizeRequest(req Request) (Request, float64, float64, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return Request{}, 0, 0, apperrors.Wrap(apperrors.CodeInvalidInput, "message cannot be empty", nil)
	}
	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang == "" {
		lang = DefaultLanguage
	}
	if _, ok := supportedLanguages[lang]; !ok {
		return Request{}, 0, 0, apperrors.Wrap(apperrors.CodeInvalidInput, "language must be one of ur, en, pa, sd", nil)
	}
	req.Language = lang
	lat, lon, err := resolveCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return Request{}, 0, 0, err
	}
	return req, lat, lon, nil
}

func resolveCoordinates(lat, lon *float64) (float64, float64, error) {
	latitude, longitude := DefaultLatitude, DefaultLongitude
	if lat != nil {
		latitude = *lat
	}
	if lon != nil {
		longitude = *lon
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return 0, 0, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be between -90 and 90", nil)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return 0, 0, apperrors.Wrap(apperrors.CodeInvalidInput, "longitude must be between -180 and 180", nil)
	}
	return latitude, longitude, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
