package model

import "time"

// Settings is the immutable configuration handed to the weather client and
// the screen components at construction time.
type Settings struct {
	APIKey         string        `validate:"required"`
	APIURL         string        `validate:"required|fullUrl"`
	APITimeout     time.Duration `validate:"required"`
	DefaultCity    string        `validate:"required"`
	ForecastDays   int           `validate:"required|min:1|max:14"`
	MinQueryLength int           `validate:"required|min:1"`
	Debounce       time.Duration `validate:"required"`
	ProviderRate   float64       `validate:"required"`
	ProviderBurst  int           `validate:"required|min:1"`
	StorageBackend string        `validate:"required|in:redis,memory"`
	CityKey        string        `validate:"required"`
}
