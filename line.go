package metricslog

import (
	"strings"
	"time"
)

// TimestampLayout is the layout of the timestamp that starts every line:
// local time with millisecond precision.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Value is one formatted metric reading.
type Value struct {
	Name  string
	Value string
}

// FormatTimestamp renders t using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatLine renders one flush line:
//
//	2024-01-15 10:30:00.123 "HTTP requests RPS" 42 "CPU" 0.87
//
// Names are written as-is between double quotes. The line has no terminator;
// sinks append it.
func FormatLine(ts time.Time, values []Value) string {
	var b strings.Builder
	b.Grow(len(TimestampLayout) + len(values)*16)
	b.WriteString(FormatTimestamp(ts))
	for _, v := range values {
		b.WriteString(` "`)
		b.WriteString(v.Name)
		b.WriteString(`" `)
		b.WriteString(v.Value)
	}
	return b.String()
}
