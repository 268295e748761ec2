package portal

import (
	"regexp"
	"strings"
)

var dateShapeRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// NormalizeDate extracts the first day/month/year shaped substring from a
// free-text delivery annotation and reorders it into zero-padded
// year-month-day form. It returns nil when no date shape is present. The
// literal left-to-right groups are preserved as day then month; no locale or
// timezone inference is attempted.
func NormalizeDate(s string) *string {
	m := dateShapeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	out := m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
	return &out
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
