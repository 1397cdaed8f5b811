package siri

import (
	"strconv"
	"strings"
)

// ParseDelayMinutes converts an ISO-8601 duration token like "PT1M30S"
// into a minute count. Negative durations (early departures) count as 0,
// and malformed tokens degrade to 0 rather than failing: a bad feed value
// must never take the polling loop down.
func ParseDelayMinutes(token string) float64 {
	text := strings.TrimPrefix(token, "PT")
	if strings.HasPrefix(text, "-") {
		return 0
	}

	minutes := 0
	seconds := 0

	if strings.Contains(text, "M") {
		parts := strings.SplitN(text, "M", 2)
		if m, err := strconv.Atoi(parts[0]); err == nil {
			minutes = m
		}
		if len(parts) > 1 && strings.Contains(parts[1], "S") {
			if s, err := strconv.Atoi(strings.Replace(parts[1], "S", "", 1)); err == nil {
				seconds = s
			}
		}
	} else if strings.Contains(text, "S") {
		if s, err := strconv.Atoi(strings.Replace(text, "S", "", 1)); err == nil {
			seconds = s
		}
	}

	return float64(minutes) + float64(seconds)/60.0
}
