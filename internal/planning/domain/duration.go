package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationMinutes is used when a duration text yields nothing.
const DefaultDurationMinutes = 30

var (
	hourPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*h[a-zà-ÿ]*\s*(\d+)?`)
	minutePattern = regexp.MustCompile(`(\d+)\s*(?:min\w*|m\b)`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// ParseDuration turns free text such as "1h30", "45min", "2 heures" or a
// bare "20" into minutes. It never fails: empty, zero, unreadable or
// longer-than-a-day input gives DefaultDurationMinutes.
func ParseDuration(text string) int {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), ",", ".")
	if s == "" {
		return DefaultDurationMinutes
	}

	total := 0
	matched := false
	rest := s

	if m := hourPattern.FindStringSubmatchIndex(s); m != nil {
		hours, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
		if err != nil || math.IsInf(hours, 0) || hours*60 > MinutesPerDay {
			return DefaultDurationMinutes
		}
		total += int(math.Round(hours * 60))
		if m[4] >= 0 {
			minutes, ok := boundedMinutes(s[m[4]:m[5]])
			if !ok {
				return DefaultDurationMinutes
			}
			total += minutes
		}
		matched = true
		rest = s[:m[0]] + " " + s[m[1]:]
	}

	if m := minutePattern.FindStringSubmatch(rest); m != nil {
		minutes, ok := boundedMinutes(m[1])
		if !ok {
			return DefaultDurationMinutes
		}
		total += minutes
		matched = true
	}

	if !matched {
		if n := numberPattern.FindString(s); n != "" {
			minutes, ok := boundedMinutes(n)
			if !ok {
				return DefaultDurationMinutes
			}
			total = minutes
		}
	}

	if total <= 0 || total > MinutesPerDay {
		return DefaultDurationMinutes
	}
	return total
}

// boundedMinutes parses digits that must fit in one day.
func boundedMinutes(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n > MinutesPerDay {
		return 0, false
	}
	return n, true
}
