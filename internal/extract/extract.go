// Package extract pulls canonical values out of raw provider items.
// Provider payloads are arbitrary JSON whose key names vary by provider
// and platform, so every accessor takes an ordered list of candidate
// keys and returns the first present, non-null value. Extraction never
// fails: missing fields yield zero values and malformed numbers coerce
// to 0.
package extract

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"sociograph/internal/model"
)

// RawItem is one provider-returned object plus the platform it came
// from. Data is the decoded JSON object as-is.
type RawItem struct {
	Platform model.Platform
	Data     map[string]any
}

// Decode parses a raw JSON payload into a RawItem.
func Decode(platform model.Platform, payload []byte) (RawItem, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return RawItem{}, err
	}
	return RawItem{Platform: platform, Data: data}, nil
}

// First returns the first present, non-null value among the candidate
// keys.
func (it RawItem) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := it.Data[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first candidate that holds a non-empty string.
func (it RawItem) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := it.Data[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Int returns the first candidate coerced to a non-negative integer.
// Zero-valued candidates are skipped so a later key can still supply the
// count, mirroring how the source data scatters counts across fields.
func (it RawItem) Int(keys ...string) int64 {
	for _, k := range keys {
		if v, ok := it.Data[k]; ok && v != nil {
			if n := CoerceInt(v); n != 0 {
				return n
			}
		}
	}
	return 0
}

// List returns the first candidate that holds a non-empty array.
func (it RawItem) List(keys ...string) []any {
	for _, k := range keys {
		if v, ok := it.Data[k]; ok {
			if arr, ok := v.([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	}
	return nil
}

// StringList returns the first candidate array reduced to its string
// elements. The result is never nil.
func (it RawItem) StringList(keys ...string) []string {
	out := []string{}
	for _, v := range it.List(keys...) {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the candidate key as a nested object, or an empty item
// when absent, so chained lookups stay nil-safe.
func (it RawItem) Map(key string) RawItem {
	if v, ok := it.Data[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return RawItem{Platform: it.Platform, Data: m}
		}
	}
	return RawItem{Platform: it.Platform, Data: map[string]any{}}
}

// Items converts an extracted array into RawItems, skipping non-object
// elements.
func (it RawItem) Items(keys ...string) []RawItem {
	var out []RawItem
	for _, v := range it.List(keys...) {
		if m, ok := v.(map[string]any); ok {
			out = append(out, RawItem{Platform: it.Platform, Data: m})
		}
	}
	return out
}

// CoerceInt converts a raw JSON value into a non-negative count.
// Numbers pass through; strings accept thousands separators and the
// K/M suffixes scrapers emit ("1.2K" -> 1200, "5M" -> 5000000). Any
// parse failure yields 0, never an error.
func CoerceInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return clampCount(int64(n))
	case int64:
		return clampCount(n)
	case float64:
		return clampCount(int64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return clampCount(int64(f))
	case string:
		return parseCount(n)
	default:
		return 0
	}
}

func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func parseCount(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	multiplier := float64(1)
	switch {
	case strings.Contains(s, "K"):
		multiplier = 1_000
		s = strings.ReplaceAll(s, "K", "")
	case strings.Contains(s, "M"):
		multiplier = 1_000_000
		s = strings.ReplaceAll(s, "M", "")
	}
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clampCount(int64(math.Round(f * multiplier)))
}

// timestampLayouts are tried in order against extracted date strings.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a provider date string against the known layout
// ladder. The boolean reports whether parsing succeeded.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// TikTok emits unix seconds for createTime.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}

// Timestamp extracts and parses the first candidate date field. An
// unparseable or missing value falls back to the current time with a
// logged warning; downstream consumers always get a usable timestamp.
func (it RawItem) Timestamp(keys ...string) time.Time {
	v, ok := it.First(keys...)
	if !ok {
		return time.Now().UTC()
	}

	switch raw := v.(type) {
	case string:
		if t, ok := ParseTimestamp(raw); ok {
			return t
		}
		slog.Warn("could not parse timestamp, substituting now", "value", raw, "platform", it.Platform)
		return time.Now().UTC()
	case float64:
		if raw > 0 {
			return time.Unix(int64(raw), 0).UTC()
		}
	}
	return time.Now().UTC()
}
