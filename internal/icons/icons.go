// Package icons maps provider condition texts to bundled weather images.
package icons

import "strings"

// IconRef names a bundled image asset.
type IconRef string

const (
	PartlyCloudy IconRef = "partlycloudy"
	ModerateRain IconRef = "moderaterain"
	Sun          IconRef = "sun"
	Cloud        IconRef = "cloud"
	HeavyRain    IconRef = "heavyrain"
	Mist         IconRef = "mist"
	Snow         IconRef = "snow"
	Thunder      IconRef = "thunder"

	// Default is used for every condition text without a dedicated image.
	Default IconRef = "other"
)

var conditions = map[string]IconRef{
	"partly cloudy":                       PartlyCloudy,
	"moderate rain":                       ModerateRain,
	"patchy rain possible":                ModerateRain,
	"patchy rain nearby":                  ModerateRain,
	"light rain":                          ModerateRain,
	"light rain shower":                   ModerateRain,
	"patchy light rain":                   ModerateRain,
	"moderate rain at times":              ModerateRain,
	"sunny":                               Sun,
	"clear":                               Sun,
	"overcast":                            Cloud,
	"cloudy":                              Cloud,
	"heavy rain":                          HeavyRain,
	"heavy rain at times":                 HeavyRain,
	"moderate or heavy freezing rain":     HeavyRain,
	"moderate or heavy rain shower":       HeavyRain,
	"torrential rain shower":              HeavyRain,
	"moderate or heavy rain with thunder": Thunder,
	"patchy light rain with thunder":      Thunder,
	"thundery outbreaks possible":         Thunder,
	"thundery outbreaks in nearby":        Thunder,
	"mist":                                Mist,
	"fog":                                 Mist,
	"freezing fog":                        Mist,
	"light snow":                          Snow,
	"moderate snow":                       Snow,
	"heavy snow":                          Snow,
	"patchy snow possible":                Snow,
	"blizzard":                            Snow,
	"moderate or heavy snow with thunder": Thunder,
	"patchy light snow with thunder":      Thunder,
}

// ConditionToIcon is total: unknown or empty texts yield Default.
// Matching ignores case and surrounding whitespace.
func ConditionToIcon(text string) IconRef {
	if icon, ok := conditions[strings.ToLower(strings.TrimSpace(text))]; ok {
		return icon
	}
	return Default
}

// Path is the asset path a renderer loads for the icon.
func (i IconRef) Path() string {
	return "assets/images/" + string(i) + ".png"
}
