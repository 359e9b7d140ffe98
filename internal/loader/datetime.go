package loader

import (
	"strings"
	"time"

	"tablesync/internal/core"
)

// zeroDatetimeLiteral is the MySQL zero-date sentinel; it never appears in
// a valid row and is always substituted.
const zeroDatetimeLiteral = "0000-00-00 00:00:00"

var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// substituteDatetime implements the non-nullable-datetime placeholder
// substitution rule: nil, empty, the zero-date sentinel, a negative-year
// string, or anything that fails every known layout is replaced by
// cfg.PlaceholderDatetime. Everything else passes through unchanged.
func substituteDatetime(cfg *core.Config, value any) any {
	switch v := value.(type) {
	case nil:
		return cfg.PlaceholderDatetime
	case time.Time:
		if v.IsZero() {
			return cfg.PlaceholderDatetime
		}
		return v.Format("2006-01-02 15:04:05")
	case string:
		return substituteDatetimeString(cfg, v)
	case []byte:
		return substituteDatetimeString(cfg, string(v))
	default:
		return value
	}
}

func substituteDatetimeString(cfg *core.Config, s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == zeroDatetimeLiteral || strings.HasPrefix(trimmed, "-") {
		return cfg.PlaceholderDatetime
	}
	if !parsesAsTimestamp(trimmed) {
		return cfg.PlaceholderDatetime
	}
	return trimmed
}

func parsesAsTimestamp(s string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
