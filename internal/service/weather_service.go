package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fakhrymubarak/weather-search/internal/metrics"
	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/repository"
)

// WeatherServiceInterface is the weather client seen by the screen components.
// A nil result means "no data available"; the cause has already been logged.
type WeatherServiceInterface interface {
	SearchLocations(ctx context.Context, query string) []model.LocationMatch
	GetForecast(ctx context.Context, city string, days int) *model.ForecastReport
}

type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Limiter     *rate.Limiter
	Logger      *zap.SugaredLogger
	Metrics     metrics.Recorder
}

// NewWeatherService wraps repo with an outbound limiter of settings.ProviderRate
// requests per second.
func NewWeatherService(repo repository.WeatherRepository, settings model.Settings, logger *zap.SugaredLogger, rec metrics.Recorder) *WeatherService {
	var limiter *rate.Limiter
	if settings.ProviderRate > 0 {
		burst := settings.ProviderBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.ProviderRate), burst)
	}
	return &WeatherService{
		WeatherRepo: repo,
		Limiter:     limiter,
		Logger:      logger,
		Metrics:     rec,
	}
}

func (s *WeatherService) SearchLocations(ctx context.Context, query string) []model.LocationMatch {
	if !s.wait(ctx, "search", "query", query) {
		return nil
	}
	matches, err := s.WeatherRepo.SearchLocations(ctx, query)
	if err != nil {
		s.logger().Errorw("location search failed", "query", query, "error", err)
		s.recorder().IncProviderRequest("search", metrics.OutcomeError)
		return nil
	}
	s.recorder().IncProviderRequest("search", metrics.OutcomeOK)
	return matches
}

func (s *WeatherService) GetForecast(ctx context.Context, city string, days int) *model.ForecastReport {
	if !s.wait(ctx, "forecast", "city", city) {
		return nil
	}
	report, err := s.WeatherRepo.GetForecast(ctx, city, days)
	if err != nil {
		s.logger().Errorw("forecast fetch failed", "city", city, "days", days, "error", err)
		s.recorder().IncProviderRequest("forecast", metrics.OutcomeError)
		return nil
	}
	s.recorder().IncProviderRequest("forecast", metrics.OutcomeOK)
	return report
}

// wait blocks on the outbound limiter; false means the caller gave up first.
func (s *WeatherService) wait(ctx context.Context, endpoint, key, value string) bool {
	if s.Limiter == nil {
		return true
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		s.logger().Warnw("provider call abandoned while throttled", "endpoint", endpoint, key, value, "error", err)
		s.recorder().IncProviderRequest(endpoint, metrics.OutcomeThrottle)
		return false
	}
	return true
}

func (s *WeatherService) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}

func (s *WeatherService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Noop()
	}
	return s.Metrics
}
