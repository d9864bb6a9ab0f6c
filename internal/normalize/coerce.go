package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

// lookup walks nested maps by key. Any missing key or non-map step yields nil.
func lookup(raw model.RawRecord, path ...string) any {
	var cur any = map[string]any(raw)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case model.RawRecord:
		return m, true
	}
	return nil, false
}

// stringField returns the trimmed string at path. Numbers are formatted;
// anything else counts as absent.
func stringField(raw model.RawRecord, path ...string) (string, bool) {
	switch v := lookup(raw, path...).(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

// floatField returns the finite number at path, accepting numeric strings.
func floatField(raw model.RawRecord, path ...string) (float64, bool) {
	var f float64
	switch v := lookup(raw, path...).(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstString returns the first present string among several paths.
func firstString(raw model.RawRecord, paths ...[]string) (string, bool) {
	for _, p := range paths {
		if s, ok := stringField(raw, p...); ok {
			return s, true
		}
	}
	return "", false
}

func optionalString(raw model.RawRecord, paths ...[]string) *string {
	if s, ok := firstString(raw, paths...); ok {
		return &s
	}
	return nil
}

// positiveAmount treats zero and negative salaries as absent.
func positiveAmount(raw model.RawRecord, key string) *float64 {
	if f, ok := floatField(raw, key); ok && f > 0 {
		return &f
	}
	return nil
}

func coordinates(raw model.RawRecord) *model.GeoPoint {
	lat, okLat := floatField(raw, "latitude")
	lon, okLon := floatField(raw, "longitude")
	if !okLat || !okLon {
		return nil
	}
	p := model.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil
	}
	return &p
}

func timeField(raw model.RawRecord, key string) (time.Time, bool) {
	s, ok := stringField(raw, key)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
