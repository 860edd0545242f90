package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/bobby-s-dev/weather-reporter/internal/ircfmt"
	"github.com/bobby-s-dev/weather-reporter/internal/models"
)

const clockLayout = "3:04 PM MST"

// FormatConditions renders every displayable field into one segment, ordered
// by display rank. Fields without a rank keep the order upstream sent them in
// and go last. Sunrise and sunset are shown in loc.
func FormatConditions(conditions models.Conditions, loc *time.Location) ([]string, error) {
	fields := make(models.Conditions, 0, len(conditions))
	for _, f := range conditions {
		if skippedFields[f.Name] || isAbsent(f.Value.Value) {
			continue
		}
		fields = append(fields, f)
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return rankOf(fields[i].Name) < rankOf(fields[j].Name)
	})

	segments := make([]string, 0, len(fields))
	for _, f := range fields {
		segment, err := formatField(f, loc)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

// RenderReport joins the segments into the channel line, prefixed with the
// bold location and suffixed with the attribution. A line longer than
// maxReplyLength runes is split in two at the middle separator.
func RenderReport(location string, segments []string) models.Report {
	line := ircfmt.Bold("[" + location + "]")
	if body := strings.Join(segments, fieldSeparator); body != "" {
		line += " " + body
	}
	line += fieldSeparator + attribution

	lines := []string{line}
	if utf8.RuneCountInString(line) > maxReplyLength {
		parts := strings.Split(line, fieldSeparator)
		div := len(parts) / 2
		lines = []string{
			strings.Join(parts[:div], fieldSeparator),
			strings.Join(parts[div:], fieldSeparator),
		}
	}

	return models.Report{
		Location: location,
		Segments: segments,
		Lines:    lines,
	}
}

func formatField(f models.Field, loc *time.Location) (string, error) {
	value, rewritten, err := formatValue(f.Name, f.Value, loc)
	if err != nil {
		return "", err
	}
	if !rewritten {
		value += f.Value.Units
	}

	if label, ok := fieldLabels[f.Name]; ok {
		return ircfmt.Bold(label) + " " + value, nil
	}
	return value, nil
}

// formatValue returns the display text for one field. rewritten reports
// whether the text already carries its own units.
func formatValue(name string, v models.FieldValue, loc *time.Location) (string, bool, error) {
	switch {
	case name == "weather_code":
		desc, ok := weatherCodeDescriptions[stringify(v.Value)]
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		return desc, true, nil

	case v.Units == "F":
		f, ok := toFloat(v.Value)
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		color := temperatureColor(f)
		return ircfmt.Colorize(roundInt(f), color) + "°F/" +
			ircfmt.Colorize(roundTenths(fahrenheitToCelsius(f)), color) + "°C", true, nil

	case v.Units == "C":
		c, ok := toFloat(v.Value)
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		f := celsiusToFahrenheit(c)
		color := temperatureColor(f)
		return ircfmt.Colorize(roundTenths(c), color) + "°C/" +
			ircfmt.Colorize(roundInt(f), color) + "°F", true, nil

	case name == "wind_direction":
		bearing, ok := toFloat(v.Value)
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		return compassPoint(bearing), true, nil

	case name == "sunrise" || name == "sunset":
		s, ok := v.Value.(string)
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		return t.In(loc).Format(clockLayout), true, nil

	case name == "moon_phase":
		desc, ok := moonPhases[stringify(v.Value)]
		if !ok {
			return "", false, &DataError{Field: name, Value: v.Value}
		}
		return desc, false, nil
	}

	if format, ok := numericFormats[name]; ok {
		if n, ok := toFloat(v.Value); ok {
			return format(n), false, nil
		}
	}
	return stringify(v.Value), false, nil
}

var numericFormats = map[string]func(float64) string{
	"humidity":                    roundInt,
	"baro_pressure":               roundHundredths,
	"wind_speed":                  roundInt,
	"wind_gust":                   roundInt,
	"visibility":                  roundInt,
	"surface_shortwave_radiation": roundInt,
}

func fahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func temperatureColor(f float64) ircfmt.Color {
	for _, band := range temperatureBands {
		if f < band.below {
			return band.color
		}
	}
	return ircfmt.Red
}

func compassPoint(bearing float64) string {
	if bearing >= 337.5 {
		return compassSectors[0].label
	}
	for _, sector := range compassSectors {
		if bearing <= sector.upper {
			return sector.label
		}
	}
	return compassSectors[0].label
}

func rankOf(name string) int {
	if rank, ok := fieldRanks[name]; ok {
		return rank
	}
	return unrankedField
}

// isAbsent reports whether upstream sent nothing worth showing.
func isAbsent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "none"
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// roundInt rounds half to even and never prints "-0".
func roundInt(x float64) string {
	return strconv.FormatInt(int64(math.RoundToEven(x)), 10)
}

func roundTenths(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}

func roundHundredths(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}
