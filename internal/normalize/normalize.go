// Package normalize converts loosely formatted numeric text into integers.
//
// Platform pages render counters in several shapes: thousands-grouped
// ("1,234,567"), Korean large units ("12.3만", "1.2억"), Latin magnitudes
// ("1.2M") and bare digit strings. Fractional remainders truncate toward
// zero, they never round up.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoNumber is returned when no recognized numeric pattern matches.
var ErrNoNumber = errors.New("no recognized number")

var (
	groupedRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
	koreanRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(만|억)`)
	latinRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([KMB])`)
	digitsRe  = regexp.MustCompile(`\d+`)
)

var koreanUnits = map[string]float64{
	"만": 1e4,
	"억": 1e8,
}

var latinUnits = map[string]float64{
	"K": 1e3,
	"M": 1e6,
	"B": 1e9,
}

// Number parses text into an int64. Patterns are tried in priority order:
// grouped integer, Korean unit suffix, Latin magnitude suffix, bare digits.
// It fails with an error wrapping ErrNoNumber when nothing matches.
func Number(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("normalize %q: %w", text, ErrNoNumber)
	}

	if m := groupedRe.FindString(trimmed); m != "" {
		n, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
		if err == nil {
			return n, nil
		}
	}

	if m := koreanRe.FindStringSubmatch(trimmed); m != nil {
		if n, ok := scaled(m[1], koreanUnits[m[2]]); ok {
			return n, nil
		}
	}

	if m := latinRe.FindStringSubmatch(trimmed); m != nil {
		if n, ok := scaled(m[1], latinUnits[strings.ToUpper(m[2])]); ok {
			return n, nil
		}
	}

	if m := digitsRe.FindString(trimmed); m != "" {
		n, err := strconv.ParseInt(m, 10, 64)
		if err == nil {
			return n, nil
		}
	}

	return 0, fmt.Errorf("normalize %q: %w", text, ErrNoNumber)
}

func scaled(digits string, unit float64) (int64, bool) {
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	// Truncate, do not round: 12.34만 is 123400, never 123401.
	return int64(value * unit), true
}
