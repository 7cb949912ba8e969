package subtitles

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNegativeTimestamp is returned when a negative offset is formatted.
var ErrNegativeTimestamp = errors.New("negative timestamp")

// FormatTimestamp renders seconds as H:MM:SS.mmm when the hour is nonzero or
// forceHours is set, otherwise MM:SS.mmm. The value is rounded to the
// nearest millisecond, halves away from zero.
func FormatTimestamp(seconds float64, forceHours bool) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "", fmt.Errorf("format timestamp: invalid value %v", seconds)
	}
	if seconds < 0 {
		return "", fmt.Errorf("format timestamp %v: %w", seconds, ErrNegativeTimestamp)
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000

	if hours > 0 || forceHours {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, secs, millis), nil
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis), nil
}

// ParseTimestamp reads H:MM:SS.mmm or MM:SS.mmm back into seconds. A comma
// is accepted as the millisecond separator.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	clock, fraction, ok := strings.Cut(strings.ReplaceAll(value, ",", "."), ".")
	if !ok || len(fraction) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	secs, errS := strconv.Atoi(parts[2])
	millis, errMS := strconv.Atoi(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || secs < 0 || secs > 59 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(secs)*1000 + int64(millis)
	return float64(total) / 1000, nil
}
