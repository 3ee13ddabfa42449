// Package isotime encodes and decodes the ISO-8601 instants and durations
// shared by the archive path layout and the SMIL clip attributes.
package isotime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

var (
	// ErrMalformedTimestamp is returned when a string is not an ISO-8601
	// instant with an explicit offset.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMalformedDuration is returned when a string is not an ISO-8601 duration.
	ErrMalformedDuration = errors.New("malformed duration")
)

const (
	layoutSeconds = "2006-01-02T15:04:05"
	layoutMicros  = "2006-01-02T15:04:05.000000"
	layoutDate    = "2006-01-02"
)

// parseLayouts are tried in order. RFC3339 accepts an optional fraction.
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"20060102T150405.999999999Z0700",
	"20060102T150405.999999999Z07:00",
}

// Format renders t in UTC with a literal Z suffix. Sub-second precision is
// kept to microseconds and only written when present.
func Format(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(layoutSeconds) + "Z"
	}
	return t.Format(layoutMicros) + "Z"
}

// Date returns the UTC calendar date of t as YYYY-MM-DD.
func Date(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

// Parse reads an ISO-8601 instant. The offset is required; a "Z" suffix and
// numeric offsets with or without a colon are accepted.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// ParseDuration reads an ISO-8601 duration such as "PT4S" or "PT1M30S".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedDuration)
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, s, err)
	}
	return d.ToTimeDuration(), nil
}
