package seed

// convert.go holds the field coercion helpers that turn raw source strings
// into typed values. Policies differ by type and are deliberate:
//
//   - integers fail loudly: the caller gets ok=false and decides whether
//     the row is dropped
//   - decimals never fail: malformed prices become a NaN numeric and are
//     written to the store as-is
//   - timestamps never fail: malformed or missing values fall back to a
//     supplied default, and the caller can observe that it happened

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestampLayouts are tried in order when parsing created timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
	"01/02/2006",
}

// parseInt parses a base-10 integer field.
func parseInt(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// parseNumeric parses a decimal field such as a price. It has no rejection
// path: input that does not scan becomes a NaN numeric, which the store
// accepts verbatim.
func parseNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{NaN: true, Valid: true}
	}
	return n
}

// parseTimeOrDefault parses a timestamp field, falling back to def when the
// value is empty or matches none of the known layouts. The second return
// reports whether the fallback was used, so the substitution is observable
// instead of silent.
func parseTimeOrDefault(s string, def time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false
		}
	}
	return def, true
}
