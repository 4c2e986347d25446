package model

// ForecastReport mirrors the provider's forecast.json payload. It is treated
// as read-only and replaced wholesale on every fetch.
type ForecastReport struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
}

type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat,omitempty"`
	Lon       float64 `json:"lon,omitempty"`
	TzID      string  `json:"tz_id,omitempty"`
	Localtime string  `json:"localtime,omitempty"`
}

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon,omitempty"`
	Code int    `json:"code,omitempty"`
}

type Current struct {
	LastUpdated string    `json:"last_updated,omitempty"`
	TempC       float64   `json:"temp_c"`
	FeelsLikeC  float64   `json:"feelslike_c,omitempty"`
	IsDay       int       `json:"is_day,omitempty"`
	Condition   Condition `json:"condition"`
	WindKph     float64   `json:"wind_kph"`
	WindDir     string    `json:"wind_dir,omitempty"`
	PressureMb  float64   `json:"pressure_mb,omitempty"`
	Humidity    int       `json:"humidity"`
	Cloud       int       `json:"cloud,omitempty"`
	UV          float64   `json:"uv,omitempty"`
}

type Forecast struct {
	ForecastDay []DayForecast `json:"forecastday"`
}

type DayForecast struct {
	Date  string `json:"date"`
	Day   Day    `json:"day"`
	Astro Astro  `json:"astro"`
}

type Day struct {
	MaxTempC          float64   `json:"maxtemp_c,omitempty"`
	MinTempC          float64   `json:"mintemp_c,omitempty"`
	AvgTempC          float64   `json:"avgtemp_c"`
	MaxWindKph        float64   `json:"maxwind_kph,omitempty"`
	AvgHumidity       float64   `json:"avghumidity,omitempty"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain,omitempty"`
	Condition         Condition `json:"condition"`
}

type Astro struct {
	Sunrise  string `json:"sunrise"`
	Sunset   string `json:"sunset,omitempty"`
	Moonrise string `json:"moonrise,omitempty"`
	Moonset  string `json:"moonset,omitempty"`
}
