package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/fakhrymubarak/weather-search/internal/model"
)

// visitor holds a limiter and the last time its bucket was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limits configures the two token buckets applied to every request.
type Limits struct {
	GlobalRate  float64 // per second, per client IP
	GlobalBurst int
	RouteRate   float64 // per second, per client IP and path
	RouteBurst  int
	IdleTimeout time.Duration
	// TrustProxy keys buckets on the first X-Forwarded-For entry. Only enable
	// it behind a proxy that overwrites the header.
	TrustProxy bool
}

// RateLimiter enforces a per-IP budget and a tighter per-IP-per-route budget,
// so a renderer hammering POST /search/text cannot starve GET /weather.
type RateLimiter struct {
	limits Limits

	muGlobal       sync.Mutex
	globalVisitors map[string]*visitor // key: ip
	muRoute        sync.Mutex
	routeVisitors  map[string]map[string]*visitor // key: ip -> path
}

func NewRateLimiter(limits Limits) *RateLimiter {
	if limits.IdleTimeout <= 0 {
		limits.IdleTimeout = 3 * time.Minute
	}
	return &RateLimiter{
		limits:         limits,
		globalVisitors: make(map[string]*visitor),
		routeVisitors:  make(map[string]map[string]*visitor),
	}
}

// getGlobalLimiter returns the limiter for ip, creating one if it does not exist.
func (rl *RateLimiter) getGlobalLimiter(ip string) *rate.Limiter {
	rl.muGlobal.Lock()
	defer rl.muGlobal.Unlock()
	v, exists := rl.globalVisitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rl.limits.GlobalRate), rl.limits.GlobalBurst)
		rl.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getRouteLimiter returns the limiter for ip and path, creating one if it does not exist.
func (rl *RateLimiter) getRouteLimiter(ip, path string) *rate.Limiter {
	rl.muRoute.Lock()
	defer rl.muRoute.Unlock()
	if _, ok := rl.routeVisitors[ip]; !ok {
		rl.routeVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := rl.routeVisitors[ip][path]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rl.limits.RouteRate), rl.limits.RouteBurst)
		rl.routeVisitors[ip][path] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup removes buckets idle for longer than IdleTimeout.
func (rl *RateLimiter) Cleanup(now time.Time) {
	rl.muGlobal.Lock()
	for ip, v := range rl.globalVisitors {
		if now.Sub(v.lastSeen) > rl.limits.IdleTimeout {
			delete(rl.globalVisitors, ip)
		}
	}
	rl.muGlobal.Unlock()

	rl.muRoute.Lock()
	for ip, paths := range rl.routeVisitors {
		for path, v := range paths {
			if now.Sub(v.lastSeen) > rl.limits.IdleTimeout {
				delete(paths, path)
			}
		}
		if len(paths) == 0 {
			delete(rl.routeVisitors, ip)
		}
	}
	rl.muRoute.Unlock()
}

// StartCleanup runs Cleanup every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.Cleanup(now)
			}
		}
	}()
}

// visitors reports the number of tracked IPs in each map.
func (rl *RateLimiter) visitors() (global, route int) {
	rl.muGlobal.Lock()
	global = len(rl.globalVisitors)
	rl.muGlobal.Unlock()
	rl.muRoute.Lock()
	route = len(rl.routeVisitors)
	rl.muRoute.Unlock()
	return
}

// getIP extracts the client's IP address from the HTTP request. X-Forwarded-For
// is honoured only when trustProxy is set.
func getIP(r *http.Request, trustProxy bool) string {
	if xff := r.Header.Get("X-Forwarded-For"); trustProxy && xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// Middleware responds 429 with a JSON error once either bucket is empty.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r, rl.limits.TrustProxy)
		if !rl.getGlobalLimiter(ip).Allow() {
			tooManyRequests(w, fmt.Sprintf("Rate limit exceeded: max %g requests per second per user/IP", rl.limits.GlobalRate), "Too Many Requests (global limit)")
			return
		}
		if !rl.getRouteLimiter(ip, r.URL.Path).Allow() {
			tooManyRequests(w, fmt.Sprintf("Rate limit exceeded: max %g requests per second per route per user/IP", rl.limits.RouteRate), "Too Many Requests (route limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}
