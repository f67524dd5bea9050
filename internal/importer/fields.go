package importer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field parsers convert raw CSV cell strings into typed values. None of
// them fail: malformed input yields ok=false (or an empty result) and the
// caller applies the field's default.

func ParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseAppID parses a game's application id.
func ParseAppID(s string) (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func ParseDecimal(s string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// ParseDate parses a YYYY-MM-DD release date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SplitMulti splits a ;-separated multi-value field, trimming tokens and
// dropping empty ones.
func SplitMulti(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(s, ";") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// OwnersRange is the parsed owners-count estimate.
type OwnersRange struct {
	Lower int
	Upper int
	Mid   int
}

// ParseOwners accepts either a single integer ("100000") or a hyphenated
// range ("20000-50000"). The midpoint is the floored integer average. Any
// malformed input yields the zero range.
func ParseOwners(s string) OwnersRange {
	s = strings.TrimSpace(s)
	if s == "" {
		return OwnersRange{}
	}
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return OwnersRange{}
		}
		lower, ok1 := ParseInt(parts[0])
		upper, ok2 := ParseInt(parts[1])
		if !ok1 || !ok2 {
			return OwnersRange{}
		}
		return OwnersRange{Lower: lower, Upper: upper, Mid: (lower + upper) / 2}
	}
	v, ok := ParseInt(s)
	if !ok {
		return OwnersRange{}
	}
	return OwnersRange{Lower: v, Upper: v, Mid: v}
}

// CleanText treats blank values and the literal "None" as no value.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "None") {
		return ""
	}
	return s
}

// CleanRequirement applies CleanText and additionally strips exactly one
// pair of enclosing braces, which the source data wraps around
// requirement records.
func CleanRequirement(s string) string {
	s = CleanText(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// ParseScreenshots extracts the full-size path of each screenshot record.
// The source cell is a JSON-like array using single quotes.
func ParseScreenshots(raw string) []string {
	if isEmptyJSON(raw) {
		return nil
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "'", `"`)
	var records []map[string]any
	if err := json.Unmarshal([]byte(normalized), &records); err != nil {
		return nil
	}
	var urls []string
	for _, rec := range records {
		if path, ok := rec["path_full"].(string); ok && path != "" {
			urls = append(urls, path)
		}
	}
	return urls
}

var urlPattern = regexp.MustCompile(`https?://[^"'\s,]+`)

// ParseMovies extracts movie URLs from the loosely structured movies cell.
// The cell ranges from well-formed JSON arrays through single objects and
// over-escaped strings down to plain garbage, so parsing degrades in
// stages: array, single object, one round of de-escaping, and finally a
// raw URL scan. Boolean literals mean "no data".
func ParseMovies(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if strings.EqualFold(trimmed, "true") || strings.EqualFold(trimmed, "false") {
		return nil
	}

	normalized := strings.ReplaceAll(trimmed, "'", `"`)

	var records []map[string]any
	if err := json.Unmarshal([]byte(normalized), &records); err == nil {
		if urls := extractMovieURLs(records); len(urls) > 0 {
			return urls
		}
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(normalized), &single); err == nil {
		if urls := extractMovieURLs([]map[string]any{single}); len(urls) > 0 {
			return urls
		}
	}

	if unescaped := strings.ReplaceAll(normalized, `\"`, `"`); unescaped != normalized {
		records = nil
		if err := json.Unmarshal([]byte(unescaped), &records); err == nil {
			if urls := extractMovieURLs(records); len(urls) > 0 {
				return urls
			}
		}
	}

	var urls []string
	for _, u := range urlPattern.FindAllString(trimmed, -1) {
		if strings.Contains(u, ".mp4") || strings.Contains(u, ".webm") || strings.Contains(u, "steam") {
			urls = append(urls, u)
		}
	}
	return urls
}

// extractMovieURLs prefers the mp4 max-quality URL and falls back to webm,
// tolerating both nested-record and flat-string shapes for either slot.
func extractMovieURLs(records []map[string]any) []string {
	var urls []string
	for _, rec := range records {
		if u := movieSlotURL(rec["mp4"]); u != "" {
			urls = append(urls, u)
			continue
		}
		if u := movieSlotURL(rec["webm"]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func movieSlotURL(slot any) string {
	switch v := slot.(type) {
	case map[string]any:
		if max, ok := v["max"].(string); ok {
			return max
		}
	case string:
		return v
	}
	return ""
}

func isEmptyJSON(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "[]" || s == "{}"
}
