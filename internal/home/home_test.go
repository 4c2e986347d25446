package home

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/search"
	"github.com/fakhrymubarak/weather-search/internal/storage"
)

var _ search.Parent = (*Home)(nil)

type stubClient struct {
	mu      sync.Mutex
	calls   []string
	fail    bool
	matches []model.LocationMatch
}

func (c *stubClient) SearchLocations(ctx context.Context, query string) []model.LocationMatch {
	return c.matches
}

func (c *stubClient) GetForecast(ctx context.Context, city string, days int) *model.ForecastReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, city)
	if c.fail {
		return nil
	}
	return &model.ForecastReport{
		Location: model.Location{Name: city, Country: "Somewhere"},
		Current:  model.Current{TempC: 20, Condition: model.Condition{Text: "Sunny"}},
	}
}

func (c *stubClient) cities() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("connection refused")
}

func testSettings() model.Settings {
	return model.Settings{
		DefaultCity:    "New Delhi",
		ForecastDays:   7,
		MinQueryLength: 3,
		Debounce:       30 * time.Millisecond,
		CityKey:        "city",
	}
}

func TestHome_LoadingBeforeMount(t *testing.T) {
	h := New(testSettings(), &stubClient{}, storage.NewMemoryStore(), nil)
	assert.True(t, h.Loading())
	assert.Equal(t, View{Loading: true}, h.Snapshot())
}

func TestHome_MountFirstLaunchUsesDefaultCity(t *testing.T) {
	client := &stubClient{}
	h := New(testSettings(), client, storage.NewMemoryStore(), nil)

	h.Mount(context.Background())

	assert.Equal(t, []string{"New Delhi"}, client.cities())
	assert.False(t, h.Loading())
	require.NotNil(t, h.Weather())
	assert.Equal(t, "New Delhi", h.Weather().Location.Name)
}

func TestHome_MountUsesPersistedCity(t *testing.T) {
	client := &stubClient{}
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "city", "Tokyo"))
	h := New(testSettings(), client, store, nil)

	h.Mount(context.Background())

	assert.Equal(t, []string{"Tokyo"}, client.cities())
}

func TestHome_MountBlankPersistedCityFallsBack(t *testing.T) {
	client := &stubClient{}
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "city", "  "))
	h := New(testSettings(), client, store, nil)

	h.Mount(context.Background())

	assert.Equal(t, []string{"New Delhi"}, client.cities())
}

func TestHome_MountStoreFailureFallsBack(t *testing.T) {
	client := &stubClient{}
	h := New(testSettings(), client, brokenStore{}, nil)

	h.Mount(context.Background())

	assert.Equal(t, []string{"New Delhi"}, client.cities())
	assert.False(t, h.Loading())
}

func TestHome_MountNilForecastStillClearsLoading(t *testing.T) {
	h := New(testSettings(), &stubClient{fail: true}, storage.NewMemoryStore(), nil)

	h.Mount(context.Background())

	assert.False(t, h.Loading())
	assert.Nil(t, h.Weather())
	assert.Equal(t, View{}, h.Snapshot())
}

func TestHome_NilCompletionKeepsCurrentWeather(t *testing.T) {
	h := New(testSettings(), &stubClient{}, storage.NewMemoryStore(), nil)
	h.Mount(context.Background())
	before := h.Weather()

	ticket := h.BeginLoading()
	assert.True(t, h.Loading())
	h.CompleteLoading(ticket, nil)

	assert.False(t, h.Loading())
	assert.Same(t, before, h.Weather())
}

func TestHome_SupersededTicketIgnored(t *testing.T) {
	h := New(testSettings(), &stubClient{}, storage.NewMemoryStore(), nil)

	first := h.BeginLoading()
	second := h.BeginLoading()
	newer := &model.ForecastReport{Location: model.Location{Name: "Paris"}}
	older := &model.ForecastReport{Location: model.Location{Name: "Lyon"}}

	h.CompleteLoading(second, newer)
	h.CompleteLoading(first, older)

	assert.Same(t, newer, h.Weather())
	assert.False(t, h.Loading())
}

func TestHome_StaleCompletionDoesNotClearLoading(t *testing.T) {
	h := New(testSettings(), &stubClient{}, storage.NewMemoryStore(), nil)

	first := h.BeginLoading()
	_ = h.BeginLoading()
	h.CompleteLoading(first, &model.ForecastReport{})

	assert.True(t, h.Loading())
	assert.Nil(t, h.Weather())
}

func TestHome_WithSearchBox(t *testing.T) {
	client := &stubClient{matches: []model.LocationMatch{{Name: "London", Country: "UK"}}}
	store := storage.NewMemoryStore()
	h := New(testSettings(), client, store, nil)
	box := search.NewBox(testSettings(), client, store, h, nil, nil)
	defer box.Close()

	h.Mount(context.Background())
	assert.Equal(t, "New Delhi", h.Snapshot().Weather.City)

	box.Expand()
	box.OnTextChanged("London")
	require.Eventually(t, func() bool { return box.Snapshot().Phase == search.Results }, time.Second, 5*time.Millisecond)

	box.OnLocationSelected(context.Background(), box.Snapshot().Matches[0])

	view := h.Snapshot()
	assert.False(t, view.Loading)
	require.NotNil(t, view.Weather)
	assert.Equal(t, "London", view.Weather.City)

	// a relaunch picks up the persisted city
	relaunched := New(testSettings(), client, store, nil)
	relaunched.Mount(context.Background())
	assert.Equal(t, []string{"New Delhi", "London", "London"}, client.cities())
}
