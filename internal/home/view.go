package home

import (
	"strconv"
	"time"

	"github.com/fakhrymubarak/weather-search/internal/icons"
	"github.com/fakhrymubarak/weather-search/internal/model"
)

type View struct {
	Loading bool         `json:"loading"`
	Weather *WeatherView `json:"weather,omitempty"`
}

type WeatherView struct {
	City      string        `json:"city"`
	Country   string        `json:"country"`
	Condition string        `json:"condition"`
	Icon      icons.IconRef `json:"icon"`
	IconPath  string        `json:"icon_path"`
	TempC     float64       `json:"temp_c"`
	Wind      string        `json:"wind"`
	Humidity  string        `json:"humidity"`
	Sunrise   string        `json:"sunrise"`
	Days      []DayView     `json:"days"`
}

type DayView struct {
	Date     string        `json:"date"`
	Weekday  string        `json:"weekday"`
	Icon     icons.IconRef `json:"icon"`
	IconPath string        `json:"icon_path"`
	AvgTempC float64       `json:"avgtemp_c"`
}

// Project flattens a report into display fields. Absent fields become zero
// values and unknown conditions get icons.Default.
func Project(report *model.ForecastReport) *WeatherView {
	if report == nil {
		return nil
	}
	icon := icons.ConditionToIcon(report.Current.Condition.Text)
	v := &WeatherView{
		City:      report.Location.Name,
		Country:   report.Location.Country,
		Condition: report.Current.Condition.Text,
		Icon:      icon,
		IconPath:  icon.Path(),
		TempC:     report.Current.TempC,
		Wind:      formatFloat(report.Current.WindKph) + " km",
		Humidity:  strconv.Itoa(report.Current.Humidity) + "%",
		Days:      make([]DayView, 0, len(report.Forecast.ForecastDay)),
	}
	if len(report.Forecast.ForecastDay) > 0 {
		v.Sunrise = report.Forecast.ForecastDay[0].Astro.Sunrise
	}
	for _, day := range report.Forecast.ForecastDay {
		dayIcon := icons.ConditionToIcon(day.Day.Condition.Text)
		v.Days = append(v.Days, DayView{
			Date:     day.Date,
			Weekday:  weekday(day.Date),
			Icon:     dayIcon,
			IconPath: dayIcon.Path(),
			AvgTempC: day.Day.AvgTempC,
		})
	}
	return v
}

func weekday(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
