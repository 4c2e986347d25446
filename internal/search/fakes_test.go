package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-search/internal/model"
)

const testDebounce = 50 * time.Millisecond

func testSettings() model.Settings {
	return model.Settings{
		DefaultCity:    "New Delhi",
		ForecastDays:   7,
		MinQueryLength: 3,
		Debounce:       testDebounce,
		CityKey:        "city",
	}
}

// eventLog records the order in which collaborators were called.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeClient struct {
	log *eventLog

	mu        sync.Mutex
	searches  []string
	forecasts []string
	// searchFn overrides the canned matches when set.
	searchFn func(query string) []model.LocationMatch
	matches  []model.LocationMatch
	report   func(city string, n int) *model.ForecastReport
}

func (c *fakeClient) SearchLocations(ctx context.Context, query string) []model.LocationMatch {
	c.mu.Lock()
	c.searches = append(c.searches, query)
	fn, matches := c.searchFn, c.matches
	c.mu.Unlock()
	if c.log != nil {
		c.log.add("search:%s", query)
	}
	if fn != nil {
		return fn(query)
	}
	return matches
}

func (c *fakeClient) GetForecast(ctx context.Context, city string, days int) *model.ForecastReport {
	c.mu.Lock()
	c.forecasts = append(c.forecasts, fmt.Sprintf("%s/%d", city, days))
	n := len(c.forecasts)
	report := c.report
	c.mu.Unlock()
	if c.log != nil {
		c.log.add("forecast:%s/%d", city, days)
	}
	if report == nil {
		return nil
	}
	return report(city, n)
}

func (c *fakeClient) searchCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.searches...)
}

func (c *fakeClient) forecastCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.forecasts...)
}

type fakeStore struct {
	log    *eventLog
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeStore(log *eventLog) *fakeStore {
	return &fakeStore{log: log, values: make(map[string]string)}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, s.err
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	if s.log != nil {
		s.log.add("persist:%s=%s", key, value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}

type fakeParent struct {
	log *eventLog
	// onBegin runs inside BeginLoading, before the ticket is returned.
	onBegin func()

	mu        sync.Mutex
	ticket    uint64
	loading   bool
	completed []*model.ForecastReport
}

func (p *fakeParent) BeginLoading() uint64 {
	if p.onBegin != nil {
		p.onBegin()
	}
	if p.log != nil {
		p.log.add("loading:on")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticket++
	p.loading = true
	return p.ticket
}

func (p *fakeParent) CompleteLoading(ticket uint64, report *model.ForecastReport) {
	if p.log != nil {
		p.log.add("loading:off")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ticket == p.ticket {
		p.loading = false
	}
	p.completed = append(p.completed, report)
}

func (p *fakeParent) isLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *fakeParent) reports() []*model.ForecastReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*model.ForecastReport(nil), p.completed...)
}

func reportFor(city string, n int) *model.ForecastReport {
	return &model.ForecastReport{
		Location: model.Location{Name: city},
		Current:  model.Current{TempC: float64(n)},
	}
}
