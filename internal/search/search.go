// Package search holds the search box state: display mode, the debounced
// location lookup and the hand-off of a picked location to the home screen.
package search

import (
	"context"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/debounce"
	"github.com/fakhrymubarak/weather-search/internal/metrics"
	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/service"
	"github.com/fakhrymubarak/weather-search/internal/storage"
)

type Mode string

const (
	Collapsed Mode = "collapsed"
	Expanded  Mode = "expanded"
)

type Phase string

const (
	Idle      Phase = "idle"
	Searching Phase = "searching"
	Results   Phase = "results"
	NoResults Phase = "no-results"
)

// Parent is the screen that displays the forecast for a picked location.
// BeginLoading hands out a ticket; only the latest ticket's completion counts.
type Parent interface {
	BeginLoading() uint64
	CompleteLoading(ticket uint64, report *model.ForecastReport)
}

// Snapshot is a copy of the box state for rendering.
type Snapshot struct {
	Mode      Mode                  `json:"mode"`
	Phase     Phase                 `json:"phase"`
	Query     string                `json:"query"`
	Searching bool                  `json:"searching"`
	Matches   []model.LocationMatch `json:"matches"`
}

type Box struct {
	settings  model.Settings
	client    service.WeatherServiceInterface
	store     storage.Store
	parent    Parent
	debouncer *debounce.Debouncer
	logger    *zap.SugaredLogger
	metrics   metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	expanded  bool
	query     string
	matches   []model.LocationMatch
	searching bool
	searched  bool
	// seq identifies the latest search; results carrying an older value are dropped.
	seq uint64
}

func NewBox(settings model.Settings, client service.WeatherServiceInterface, store storage.Store, parent Parent, logger *zap.SugaredLogger, rec metrics.Recorder) *Box {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if rec == nil {
		rec = metrics.Noop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Box{
		settings:  settings,
		client:    client,
		store:     store,
		parent:    parent,
		debouncer: debounce.New(settings.Debounce),
		logger:    logger,
		metrics:   rec,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Expand opens the text field.
func (b *Box) Expand() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expanded = true
}

// Collapse dismisses the box. A pending search is dropped and results of
// searches still in flight are ignored.
func (b *Box) Collapse() {
	b.debouncer.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Box) reset() {
	b.expanded = false
	b.query = ""
	b.matches = nil
	b.searching = false
	b.searched = false
	b.seq++
}

// OnTextChanged receives every edit of the search field. Queries shorter than
// the configured minimum neither issue a request nor touch the match list;
// they do supersede a search still waiting out the quiet period.
func (b *Box) OnTextChanged(raw string) {
	b.mu.Lock()
	if !b.expanded {
		b.mu.Unlock()
		b.logger.Debugw("text change ignored while collapsed", "text", raw)
		return
	}
	b.query = raw
	b.mu.Unlock()

	if utf8.RuneCountInString(raw) < b.settings.MinQueryLength {
		b.debouncer.Stop()
		return
	}
	b.debouncer.Trigger(func() { b.runSearch(raw) })
}

func (b *Box) runSearch(query string) {
	b.mu.Lock()
	if !b.expanded {
		b.mu.Unlock()
		return
	}
	b.seq++
	seq := b.seq
	b.searching = true
	b.mu.Unlock()

	b.metrics.IncSearchFired()
	matches := b.client.SearchLocations(b.ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		b.metrics.IncSearchDiscarded()
		b.logger.Debugw("stale search result dropped", "query", query, "seq", seq, "latest", b.seq)
		return
	}
	b.matches = matches
	b.searching = false
	b.searched = true
}

// OnLocationSelected collapses the box, persists loc.Name as the current city
// and loads its forecast into the parent. The parent's loading state is
// completed even if the fetch fails or panics.
func (b *Box) OnLocationSelected(ctx context.Context, loc model.LocationMatch) (report *model.ForecastReport) {
	b.Collapse()
	b.metrics.IncSelection()
	b.logger.Infow("location selected", "name", loc.Name, "country", loc.Country)

	ticket := b.parent.BeginLoading()
	defer func() {
		b.parent.CompleteLoading(ticket, report)
	}()

	if err := b.store.Set(ctx, b.settings.CityKey, loc.Name); err != nil {
		b.logger.Errorw("could not persist city", "city", loc.Name, "error", err)
	}

	report = b.client.GetForecast(ctx, loc.Name, b.settings.ForecastDays)
	return report
}

func (b *Box) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{
		Mode:      Collapsed,
		Phase:     Idle,
		Query:     b.query,
		Searching: b.searching,
		Matches:   make([]model.LocationMatch, len(b.matches)),
	}
	copy(s.Matches, b.matches)
	if !b.expanded {
		return s
	}
	s.Mode = Expanded
	switch {
	case b.searching:
		s.Phase = Searching
	case len(b.matches) > 0:
		s.Phase = Results
	case b.searched:
		s.Phase = NoResults
	}
	return s
}

// Close drops any pending search and cancels searches in flight.
func (b *Box) Close() {
	b.debouncer.Stop()
	b.cancel()
}
