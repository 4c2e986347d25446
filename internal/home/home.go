// Package home orchestrates the main screen: the initial load of the
// persisted city and the single forecast currently on display.
package home

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/service"
	"github.com/fakhrymubarak/weather-search/internal/storage"
)

type Home struct {
	settings model.Settings
	client   service.WeatherServiceInterface
	store    storage.Store
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	loading bool
	weather *model.ForecastReport
	ticket  uint64
}

// New returns a screen in the loading state; call Mount to populate it.
func New(settings model.Settings, client service.WeatherServiceInterface, store storage.Store, logger *zap.SugaredLogger) *Home {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Home{
		settings: settings,
		client:   client,
		store:    store,
		logger:   logger,
		loading:  true,
	}
}

// Mount loads the forecast for the persisted city, or the default city when
// none was saved. The result replaces the current weather even when nil.
func (h *Home) Mount(ctx context.Context) {
	ticket := h.BeginLoading()
	var report *model.ForecastReport
	defer func() {
		h.complete(ticket, report, true)
	}()

	city := h.initialCity(ctx)
	h.logger.Infow("loading initial forecast", "city", city)
	report = h.client.GetForecast(ctx, city, h.settings.ForecastDays)
}

func (h *Home) initialCity(ctx context.Context) string {
	saved, found, err := h.store.Get(ctx, h.settings.CityKey)
	if err != nil {
		h.logger.Warnw("could not read persisted city", "key", h.settings.CityKey, "error", err)
		return h.settings.DefaultCity
	}
	if !found || strings.TrimSpace(saved) == "" {
		return h.settings.DefaultCity
	}
	return saved
}

// BeginLoading puts the screen in the loading state and returns the ticket
// that must be passed to CompleteLoading.
func (h *Home) BeginLoading() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticket++
	h.loading = true
	return h.ticket
}

// CompleteLoading ends the load identified by ticket. A nil report keeps the
// forecast already on screen. Completions of superseded tickets are ignored.
func (h *Home) CompleteLoading(ticket uint64, report *model.ForecastReport) {
	h.complete(ticket, report, false)
}

func (h *Home) complete(ticket uint64, report *model.ForecastReport, replaceWithNil bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ticket != h.ticket {
		h.logger.Debugw("superseded forecast dropped", "ticket", ticket, "latest", h.ticket)
		return
	}
	if report != nil || replaceWithNil {
		h.weather = report
	}
	h.loading = false
}

func (h *Home) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

func (h *Home) Weather() *model.ForecastReport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.weather
}

// Snapshot is what the renderer draws: a progress indicator while loading,
// the projected forecast otherwise.
func (h *Home) Snapshot() View {
	h.mu.Lock()
	loading, weather := h.loading, h.weather
	h.mu.Unlock()

	if loading {
		return View{Loading: true}
	}
	return View{Weather: Project(weather)}
}
