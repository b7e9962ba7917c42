// Package normalize converts raw source values into canonical record
// fields. Nothing here returns an error: a value that cannot be parsed
// becomes a defined sentinel so that a single malformed field never
// aborts a collection run.
package normalize

import (
	"strings"
	"time"
	"unicode/utf8"
)

const sourceLayout = "2006-01-02T15:04:05"

// Timestamp parses a source timestamp string and returns its UTC
// instant together with a rendering in loc, formatted
// "2006-01-02 15:04 (TZ)".
//
// Fractional seconds and a trailing Z are tolerated and stripped
// before parsing. On failure the instant is the zero time and the
// display string is the raw input passed through unchanged.
func Timestamp(raw string, loc *time.Location) (time.Time, string) {
	clean := strings.TrimSuffix(raw, "Z")
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		clean = clean[:i]
	}

	t, err := time.Parse(sourceLayout, clean)
	if err != nil {
		return time.Time{}, raw
	}

	utc := t.UTC()
	return utc, Display(utc, loc)
}

// Display renders a UTC instant in loc as "2006-01-02 15:04 (TZ)".
func Display(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04 (MST)")
}

// StringOr returns *v, or fallback when v is nil or points to an
// empty string.
func StringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

// FirstNonEmpty returns the first candidate whose trimmed value is
// non-empty, or "" when all are empty. Candidates are an ordered
// fallback chain, cheapest extraction first.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}

// Excerpt strips markup from a content fragment and caps it at max
// characters. Extraction is best effort: everything from the first
// image or break tag onward is discarded, remaining paragraph tags
// become newlines, and any other tags are cut at their first opening
// bracket.
func Excerpt(raw string, max int) string {
	s := raw
	for _, marker := range []string{"<img", "<br", "<figure"} {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.ReplaceAll(s, "<p>", "")
	s = strings.ReplaceAll(s, "</p>", "\n")
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	if max > 0 && utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}

// UnixOrZero returns t's UNIX seconds, or 0 for the zero time.
func UnixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// SameDay reports whether t falls on day's calendar date in loc.
// The zero time never matches any day.
func SameDay(t, day time.Time, loc *time.Location) bool {
	if t.IsZero() {
		return false
	}
	ty, tm, td := t.In(loc).Date()
	dy, dm, dd := day.In(loc).Date()
	return ty == dy && tm == dm && td == dd
}
