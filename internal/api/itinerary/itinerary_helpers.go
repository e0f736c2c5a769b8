package itinerary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	defaultStart = "起点"
	defaultEnd   = "终点"
)

var destinationSeparators = regexp.MustCompile(`[,，→]|->`)

// resolveEndpoints returns the first and last stop of the trip. Either may be empty.
func resolveEndpoints(prefs types.TripPreferences) (start, end string) {
	var stops []string
	for _, part := range destinationSeparators.Split(prefs.Destinations, -1) {
		if p := strings.TrimSpace(part); p != "" {
			stops = append(stops, p)
		}
	}
	if len(stops) > 0 {
		start = stops[0]
		end = stops[len(stops)-1]
	}
	if start == "" {
		start = strings.TrimSpace(prefs.StartLocation)
	}
	if end == "" {
		end = strings.TrimSpace(prefs.EndLocation)
	}
	return start, end
}

// displayEndpoints is resolveEndpoints with placeholders for missing stops.
func displayEndpoints(prefs types.TripPreferences) (start, end string) {
	start, end = resolveEndpoints(prefs)
	if start == "" {
		start = defaultStart
	}
	if end == "" {
		end = defaultEnd
	}
	return start, end
}

// tripDays is the requested duration, at least one day.
func tripDays(prefs types.TripPreferences) int {
	if prefs.Duration < 1 {
		return 1
	}
	return prefs.Duration
}

// interestTags prefers the style preferences and falls back to the legacy interests.
func interestTags(prefs types.TripPreferences) []string {
	if len(prefs.StylePreferences) > 0 {
		return prefs.StylePreferences
	}
	return prefs.Interests
}

func isSet(b *bool) bool {
	return b != nil && *b
}

func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinNonEmpty(items []string, sep string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
