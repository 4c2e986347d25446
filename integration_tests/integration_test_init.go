package integrationtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/handler"
	"github.com/fakhrymubarak/weather-search/internal/home"
	"github.com/fakhrymubarak/weather-search/internal/metrics"
	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/repository"
	"github.com/fakhrymubarak/weather-search/internal/search"
	"github.com/fakhrymubarak/weather-search/internal/service"
	"github.com/fakhrymubarak/weather-search/internal/storage"
)

const (
	testAPIKey   = "test_api_key"
	testDebounce = 60 * time.Millisecond
)

// mockProvider imitates the search.json and forecast.json endpoints and
// records every query it receives.
type mockProvider struct {
	mu        sync.Mutex
	searches  []string
	forecasts []string
	failing   atomic.Bool
}

func (p *mockProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if p.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/search.json":
		p.mu.Lock()
		p.searches = append(p.searches, q.Get("q"))
		p.mu.Unlock()
		matches := []model.LocationMatch{}
		if q.Get("q") == "London" {
			matches = append(matches, model.LocationMatch{ID: 2801268, Name: "London", Country: "UK"})
		}
		_ = json.NewEncoder(w).Encode(matches)
	case "/forecast.json":
		p.mu.Lock()
		p.forecasts = append(p.forecasts, fmt.Sprintf("%s/%s", q.Get("q"), q.Get("days")))
		p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.ForecastReport{
			Location: model.Location{Name: q.Get("q"), Country: "Somewhere"},
			Current: model.Current{
				TempC:     21.5,
				WindKph:   9.4,
				Humidity:  60,
				Condition: model.Condition{Text: "Sunny"},
			},
			Forecast: model.Forecast{ForecastDay: []model.DayForecast{{
				Date:  "2026-10-15",
				Day:   model.Day{AvgTempC: 19, Condition: model.Condition{Text: "Partly cloudy"}},
				Astro: model.Astro{Sunrise: "06:30 AM"},
			}}},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *mockProvider) searchQueries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.searches...)
}

func (p *mockProvider) forecastQueries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.forecasts...)
}

// testApp is one "launch" of the application against shared storage.
type testApp struct {
	home   *home.Home
	box    *search.Box
	server *httptest.Server
}

func (a *testApp) Close() {
	a.box.Close()
	a.server.Close()
}

func testSettings(providerURL string) model.Settings {
	return model.Settings{
		APIKey:         testAPIKey,
		APIURL:         providerURL,
		APITimeout:     2 * time.Second,
		DefaultCity:    "New Delhi",
		ForecastDays:   7,
		MinQueryLength: 3,
		Debounce:       testDebounce,
		ProviderRate:   100,
		ProviderBurst:  100,
		StorageBackend: "redis",
		CityKey:        "city",
	}
}

func launchApp(settings model.Settings, redisClient *redisv9.Client) *testApp {
	logger := zap.NewNop().Sugar()
	rec := metrics.New()
	store := storage.NewRedisStore(redisClient, "weather-search:")
	client := service.NewWeatherService(repository.NewWeatherRepository(settings), settings, logger, rec)

	h := home.New(settings, client, store, logger)
	box := search.NewBox(settings, client, store, h, logger, rec)

	mux := http.NewServeMux()
	handler.NewWeatherHandler(h, box, logger).Register(mux)
	mux.Handle("/metrics", rec.Handler())

	return &testApp{home: h, box: box, server: httptest.NewServer(mux)}
}
