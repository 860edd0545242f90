package services

import "github.com/bobby-s-dev/weather-reporter/internal/ircfmt"

const (
	attribution    = "Powered by ClimaCell API (https://www.climacell.co/weather-api)"
	maxReplyLength = 475
	fieldSeparator = " | "
	unrankedField  = 999
)

var weatherCodeDescriptions = map[string]string{
	"rain_heavy":          "🌧️ Substantial rain",
	"rain":                "🌧️ Rain",
	"rain_light":          "🌧️ Light rain",
	"freezing_rain_heavy": "🧊🌧️ Substantial freezing rain",
	"freezing_rain":       "🧊🌧️ Freezing rain",
	"freezing_rain_light": "🧊🌧️ Light freezing rain",
	"freezing_drizzle":    "🧊🌧️ Light freezing rain falling in fine pieces",
	"drizzle":             "🌦️ Drizzle",
	"ice_pellets_heavy":   "🧊 Substantial ice pellets",
	"ice_pellets":         "🧊 Ice pellets",
	"ice_pellets_light":   "🧊 Light ice pellets",
	"snow_heavy":          "❄️ Substantial snow",
	"snow":                "❄️ Snow",
	"snow_light":          "❄️ Light snow",
	"flurries":            "❄️ Flurries",
	"tstorm":              "🌩️ Thunderstorm conditions",
	"fog_light":           "🌁 Light fog",
	"fog":                 "🌁 Fog",
	"cloudy":              "☁️ Cloudy",
	"mostly_cloudy":       "🌥️ Mostly cloudy",
	"partly_cloudy":       "⛅ Partly cloudy",
	"mostly_clear":        "🌤️ Mostly clear",
	"clear":               "☀️ Clear",
}

// fieldLabels are rendered bold in front of the value. temp has no label.
var fieldLabels = map[string]string{
	"weather_code":                "Conditions:",
	"feels_like":                  "Feels Like:",
	"dewpoint":                    "Dewpoint:",
	"humidity":                    "Humidity:",
	"wind_speed":                  "Wind Speed:",
	"wind_direction":              "Wind Direction:",
	"wind_gust":                   "Wind Gust:",
	"baro_pressure":               "Pressure:",
	"precipitation":               "Precipitation:",
	"precipitation_type":          "Precipitation:",
	"sunrise":                     "Sunrise:",
	"sunset":                      "Sunset:",
	"visibility":                  "Visibility:",
	"cloud_cover":                 "Cloud Cover:",
	"cloud_base":                  "Cloud Base:",
	"cloud_ceiling":               "Cloud Ceiling:",
	"surface_shortwave_radiation": "Solar Radiation:",
	"moon_phase":                  "Moon Phase:",
	"epa_health_concern":          "Air Quality:",
}

var fieldRanks = map[string]int{
	"temp":                        1,
	"feels_like":                  2,
	"weather_code":                3,
	"precipitation_type":          4,
	"precipitation":               5,
	"humidity":                    6,
	"dewpoint":                    7,
	"wind_speed":                  8,
	"wind_gust":                   9,
	"wind_direction":              10,
	"baro_pressure":               11,
	"sunrise":                     12,
	"sunset":                      13,
	"visibility":                  14,
	"cloud_cover":                 15,
	"cloud_base":                  16,
	"cloud_ceiling":               17,
	"surface_shortwave_radiation": 18,
	"moon_phase":                  19,
	"epa_health_concern":          20,
}

var moonPhases = map[string]string{
	"new":             "🌑 new moon",
	"new_moon":        "🌑 new moon",
	"waxing_crescent": "🌒 waxing crescent (1/4 full)",
	"first_quarter":   "🌓 half moon (first quarter)",
	"waxing_gibbous":  "🌔 waxing gibbous (3/4 full)",
	"full":            "🌕 full moon",
	"waning_gibbous":  "🌖 waning gibbous (3/4 full)",
	"third_quarter":   "🌗 half moon (last quarter)",
	"last_quarter":    "🌗 half moon (last quarter)",
	"waning_crescent": "🌘 waning crescent (1/4 full)",
}

// skippedFields are metadata ClimaCell always returns alongside the
// requested fields.
var skippedFields = map[string]bool{
	"lat":              true,
	"lon":              true,
	"observation_time": true,
}

type temperatureBand struct {
	below float64
	color ircfmt.Color
}

// Upper bounds are exclusive; anything at or above the last bound is red.
var temperatureBands = []temperatureBand{
	{10, ircfmt.LightBlue},
	{32, ircfmt.Teal},
	{50, ircfmt.Blue},
	{60, ircfmt.LightGreen},
	{70, ircfmt.Green},
	{80, ircfmt.Yellow},
	{90, ircfmt.Orange},
}

type compassSector struct {
	upper float64
	label string
}

// Sectors are (previous upper, upper]. Bearings from 337.5 up wrap back to N.
var compassSectors = []compassSector{
	{22.5, "↓ N"},
	{67.5, "↙ NE"},
	{112.5, "← E"},
	{157.5, "↖ SE"},
	{202.5, "↑ S"},
	{247.5, "↗ SW"},
	{292.5, "→ W"},
	{337.5, "↘ NW"},
}
