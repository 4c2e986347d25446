package repository

import (
	"io"
	"net/http"
	"strings"

	"github.com/fakhrymubarak/weather-search/internal/model"
)

// RoundTripperFunc allows us to easily mock http.Client responses in tests.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newMockHTTPClient(fn RoundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testSettings() model.Settings {
	return model.Settings{
		APIKey: "test_api_key",
		APIURL: "https://api.weatherapi.com/v1/",
	}
}
