package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// plainValue renders v without quoting, for header fields.
func plainValue(v slog.Value) string {
	return renderValue(v.Resolve())
}

// formatValue renders v for a field line, quoting text that would
// otherwise be ambiguous.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	text := renderValue(v)
	switch v.Kind() {
	case slog.KindString, slog.KindAny:
		return quoteIfNeeded(text)
	}
	return text
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
