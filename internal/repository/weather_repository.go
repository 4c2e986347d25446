package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fakhrymubarak/weather-search/internal/model"
)

// Custom error types
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrUnauthorized     = errors.New("API key rejected")
	ErrExternalAPI      = errors.New("external API error")
	ErrDecode           = errors.New("malformed provider response")
)

// WeatherRepository defines the interface for weather provider access
type WeatherRepository interface {
	SearchLocations(ctx context.Context, query string) ([]model.LocationMatch, error)
	GetForecast(ctx context.Context, city string, days int) (*model.ForecastReport, error)
}

// weatherRepository implements WeatherRepository against weatherapi.com
type weatherRepository struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(settings model.Settings, httpClient ...*http.Client) WeatherRepository {
	client := &http.Client{Timeout: settings.APITimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &weatherRepository{
		apiURL:     strings.TrimRight(settings.APIURL, "/"),
		apiKey:     settings.APIKey,
		httpClient: client,
	}
}

// SearchLocations calls search.json with the raw city name prefix
func (r *weatherRepository) SearchLocations(ctx context.Context, query string) ([]model.LocationMatch, error) {
	params := url.Values{}
	params.Set("q", query)

	var matches []model.LocationMatch
	if err := r.get(ctx, "search.json", params, &matches); err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []model.LocationMatch{}
	}
	return matches, nil
}

// GetForecast calls forecast.json for the given city and number of days
func (r *weatherRepository) GetForecast(ctx context.Context, city string, days int) (*model.ForecastReport, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	var report model.ForecastReport
	if err := r.get(ctx, "forecast.json", params, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// get issues a single GET and decodes the JSON body into out
func (r *weatherRepository) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if r.apiKey == "" {
		return ErrAPIKeyMissing
	}
	params.Set("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrExternalAPI, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExternalAPI, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return ErrLocationNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: %s returned status %d", ErrExternalAPI, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, endpoint, err)
	}
	return nil
}
