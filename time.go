package content

import (
	"strconv"
	"strings"
	"time"
)

// DefaultTokenTTL is used whenever a TTL string cannot be understood.
const DefaultTokenTTL = 3600 * time.Second

// ParseTokenTTL turns a duration string with a unit suffix (s, m, h, d)
// into a time.Duration. A missing or unrecognized suffix, or an invalid
// count, falls back to DefaultTokenTTL.
func ParseTokenTTL(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 {
		return DefaultTokenTTL
	}

	count, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || count <= 0 {
		return DefaultTokenTTL
	}

	switch raw[len(raw)-1] {
	case 's':
		return time.Duration(count) * time.Second
	case 'm':
		return time.Duration(count) * time.Minute
	case 'h':
		return time.Duration(count) * time.Hour
	case 'd':
		return time.Duration(count) * 24 * time.Hour
	default:
		return DefaultTokenTTL
	}
}
