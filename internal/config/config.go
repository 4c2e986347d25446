package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/model"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		setDefaults()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func setDefaults() {
	viper.SetDefault("app.default_city", "New Delhi")
	viper.SetDefault("forecast.days", 7)
	viper.SetDefault("search.min_query_length", 3)
	viper.SetDefault("search.debounce", "1200ms")
	viper.SetDefault("weatherapi.api_url", "https://api.weatherapi.com/v1")
	viper.SetDefault("weatherapi.timeout", "10s")
	viper.SetDefault("provider.rate", 5)
	viper.SetDefault("provider.burst", 5)
	viper.SetDefault("storage.backend", "redis")
	viper.SetDefault("storage.city_key", "city")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("server.port", "8080")
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetWeatherApiUrl() string {
	initConfig()
	return viper.GetString("weatherapi.api_url")
}

func GetWeatherAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("WEATHERAPI_API_KEY")
}

func GetRedisAddr() string {
	initConfig()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

func GetDefaultCity() string {
	initConfig()
	return viper.GetString("app.default_city")
}

// GetServerTimeout returns server.<key> as a duration, or fallback when unset or invalid.
func GetServerTimeout(key string, fallback time.Duration) time.Duration {
	initConfig()
	return durationOr("server."+key, fallback)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetSettings assembles the immutable settings used by the weather client and
// the screen components, and validates them.
func GetSettings() (model.Settings, error) {
	initConfig()
	s := model.Settings{
		APIKey:         GetWeatherAPIKey(),
		APIURL:         GetWeatherApiUrl(),
		APITimeout:     durationOr("weatherapi.timeout", 10*time.Second),
		DefaultCity:    GetDefaultCity(),
		ForecastDays:   viper.GetInt("forecast.days"),
		MinQueryLength: viper.GetInt("search.min_query_length"),
		Debounce:       durationOr("search.debounce", 1200*time.Millisecond),
		ProviderRate:   viper.GetFloat64("provider.rate"),
		ProviderBurst:  viper.GetInt("provider.burst"),
		StorageBackend: viper.GetString("storage.backend"),
		CityKey:        viper.GetString("storage.city_key"),
	}
	if err := ValidateSettings(s); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// ValidateSettings checks the struct tags on model.Settings.
func ValidateSettings(s model.Settings) error {
	v := validate.Struct(&s)
	if !v.Validate() {
		return fmt.Errorf("invalid settings: %w", v.Errors)
	}
	return nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	durStr := viper.GetString(key)
	if durStr == "" {
		return fallback
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return fallback
	}
	return dur
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	return durationOr("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetRateLimiterTrustProxy reports whether the inbound limiter may key clients
// on X-Forwarded-For. Off unless configured.
func GetRateLimiterTrustProxy() bool {
	initConfig()
	return viper.GetBool("rate_limiter.trust_proxy")
}

// GetGlobalRateLimiterConfig returns the rate (per second) and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 20
	}
	return
}

// GetParamRateLimiterConfig returns the rate (per second) and burst for the param rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 5
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 10
	}
	return
}
