package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Rates are tiny so no token refills during a test; only the burst matters.
func testLimits() Limits {
	return Limits{
		GlobalRate:  0.001,
		GlobalBurst: 5,
		RouteRate:   0.001,
		RouteBurst:  2,
		IdleTimeout: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func serve(mw http.Handler, method, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRateLimitMiddleware_GlobalBurst(t *testing.T) {
	rl := NewRateLimiter(testLimits())
	mw := rl.Middleware(okHandler())
	ip := "1.2.3.4:1234"

	// distinct routes, so only the global bucket drains
	for i := 0; i < 5; i++ {
		w := serve(mw, http.MethodGet, fmt.Sprintf("/route%d", i), ip)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := serve(mw, http.MethodGet, "/route9", ip)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := decodeError(t, w)
	assert.Contains(t, resp["error"], "Rate limit exceeded")
	assert.Equal(t, "Too Many Requests (global limit)", resp["message"])
}

func TestRateLimitMiddleware_PerRouteBurst(t *testing.T) {
	rl := NewRateLimiter(testLimits())
	mw := rl.Middleware(okHandler())
	ip := "2.3.4.5:2345"

	for i := 0; i < 2; i++ {
		w := serve(mw, http.MethodPost, "/search/text", ip)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := serve(mw, http.MethodPost, "/search/text", ip)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too Many Requests (route limit)", decodeError(t, w)["message"])

	// another route still has budget
	assert.Equal(t, http.StatusOK, serve(mw, http.MethodGet, "/weather", ip).Code)
}

func TestRateLimitMiddleware_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(testLimits())
	mw := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		serve(mw, http.MethodGet, "/weather", "3.3.3.3:1")
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(mw, http.MethodGet, "/weather", "3.3.3.3:1").Code)
	assert.Equal(t, http.StatusOK, serve(mw, http.MethodGet, "/weather", "4.4.4.4:1").Code)
}

func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getIP(req, false))
	assert.Equal(t, "10.0.0.1", getIP(req, true))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "10.0.0.1", getIP(req, false))
	assert.Equal(t, "203.0.113.7", getIP(req, true))

	req.Header.Set("X-Forwarded-For", " , 10.0.0.2")
	assert.Equal(t, "10.0.0.1", getIP(req, true))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", getIP(req, false))
}

func TestRateLimitMiddleware_ForwardedForIgnoredByDefault(t *testing.T) {
	rl := NewRateLimiter(testLimits())
	mw := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/route/%d", i), nil)
		req.RemoteAddr = "5.5.5.5:1"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/route/last", nil)
	req.RemoteAddr = "5.5.5.5:1"
	req.Header.Set("X-Forwarded-For", "198.51.100.99")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	global, _ := rl.visitors()
	assert.Equal(t, 1, global)
}

func TestRateLimitMiddleware_TrustProxy(t *testing.T) {
	limits := testLimits()
	limits.TrustProxy = true
	rl := NewRateLimiter(limits)
	mw := rl.Middleware(okHandler())

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/weather", nil)
		req.RemoteAddr = "10.0.0.1:1"
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	global, _ := rl.visitors()
	assert.Equal(t, 2, global)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(testLimits())
	mw := rl.Middleware(okHandler())
	serve(mw, http.MethodGet, "/weather", "5.5.5.5:1")

	global, route := rl.visitors()
	assert.Equal(t, 1, global)
	assert.Equal(t, 1, route)

	rl.Cleanup(time.Now())
	global, route = rl.visitors()
	assert.Equal(t, 1, global)
	assert.Equal(t, 1, route)

	rl.Cleanup(time.Now().Add(2 * time.Minute))
	global, route = rl.visitors()
	assert.Zero(t, global)
	assert.Zero(t, route)
}

func TestNewRateLimiter_DefaultIdleTimeout(t *testing.T) {
	rl := NewRateLimiter(Limits{GlobalRate: 1, GlobalBurst: 1, RouteRate: 1, RouteBurst: 1})
	assert.Equal(t, 3*time.Minute, rl.limits.IdleTimeout)
}
