package extract

import (
	"testing"
	"time"

	"sociograph/internal/model"
)

func TestCoerceIntSuffixes(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{"1.2K", 1200},
		{"1.2k", 1200},
		{"5M", 5_000_000},
		{"5m", 5_000_000},
		{"42", 42},
		{"1,234", 1234},
		{"1,234.5K", 1_234_500},
		{"", 0},
		{"likes", 0},
		{float64(37), 37},
		{int(9), 9},
		{-3, 0},
		{nil, 0},
		{[]any{"x"}, 0},
	}

	for _, tc := range cases {
		if got := CoerceInt(tc.in); got != tc.want {
			t.Fatalf("CoerceInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFirstAndString(t *testing.T) {
	it := RawItem{Platform: model.PlatformFacebook, Data: map[string]any{
		"text":  "",
		"likes": nil,
		"msg":   "hello",
	}}

	if got := it.String("text", "msg"); got != "hello" {
		t.Fatalf("String fell through wrong: got %q", got)
	}
	if _, ok := it.First("likes", "missing"); ok {
		t.Fatal("First should skip explicit nulls")
	}
	if got := it.String("missing"); got != "" {
		t.Fatalf("String on missing key = %q, want empty", got)
	}
}

func TestIntSkipsZeroCandidates(t *testing.T) {
	it := RawItem{Data: map[string]any{
		"likes":      float64(0),
		"likesCount": "2.5K",
	}}
	if got := it.Int("likes", "likesCount"); got != 2500 {
		t.Fatalf("Int = %d, want 2500", got)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T10:20:30.123456Z", time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC)},
		{"2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01 10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"1709288430", time.Unix(1709288430, 0).UTC()},
	}

	for _, tc := range cases {
		got, ok := ParseTimestamp(tc.in)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", tc.in)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, ok := ParseTimestamp("last tuesday"); ok {
		t.Fatal("expected unparseable input to report failure")
	}
}

func TestTimestampFallsBackToNow(t *testing.T) {
	it := RawItem{Data: map[string]any{"timestamp": "not a date"}}

	before := time.Now().UTC().Add(-time.Second)
	got := it.Timestamp("timestamp")
	after := time.Now().UTC().Add(time.Second)

	if got.Before(before) || got.After(after) {
		t.Fatalf("fallback timestamp %v not within [%v, %v]", got, before, after)
	}

	// Missing key behaves the same way.
	got = it.Timestamp("missing")
	if got.IsZero() {
		t.Fatal("missing timestamp must still produce a non-zero time")
	}
}

func TestListHelpers(t *testing.T) {
	it := RawItem{Data: map[string]any{
		"hashtags": []any{"go", "scraping", 3},
		"empty":    []any{},
		"authorMeta": map[string]any{
			"name": "creator",
		},
	}}

	tags := it.StringList("missing", "hashtags")
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "scraping" {
		t.Fatalf("StringList = %v", tags)
	}

	if got := it.StringList("empty"); got == nil {
		t.Fatal("StringList must return an empty slice, not nil")
	}

	if got := it.Map("authorMeta").String("name"); got != "creator" {
		t.Fatalf("nested Map lookup = %q", got)
	}
	if got := it.Map("missing").String("name"); got != "" {
		t.Fatalf("Map on missing key should be empty-safe, got %q", got)
	}
}

func TestDecode(t *testing.T) {
	it, err := Decode(model.PlatformTikTok, []byte(`{"playCount": "1.5M"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := it.Int("playCount"); got != 1_500_000 {
		t.Fatalf("decoded Int = %d", got)
	}

	if _, err := Decode(model.PlatformTikTok, []byte(`[1,2]`)); err == nil {
		t.Fatal("expected error decoding non-object payload")
	}
}
