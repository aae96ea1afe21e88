package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	durationNumber = `(\d+(?:\.\d+)?)`
	durationUnit   = `(時間半|時間|分|秒|hours?|hrs?|minutes?|mins?|seconds?|secs?)`

	rangePattern = regexp.MustCompile(durationNumber + `\s*` + durationUnit + `?\s*~\s*` + durationNumber + `\s*` + durationUnit + `?`)
	partPattern  = regexp.MustCompile(durationNumber + `\s*` + durationUnit)
	barePattern  = regexp.MustCompile(durationNumber)

	durationReplacer = strings.NewReplacer(
		"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
		"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
		"．", ".",
		"〜", "~", "～", "~", "–", "~", "—", "~", "-", "~", "から", "~",
	)
)

// NormalizeDuration converts a duration phrase to minutes. "About N" is N,
// a range takes its maximum, hours, minutes and seconds are added together
// and a bare number is read as minutes. ok is false when no number is found.
//
//	約10分     -> 10
//	5〜10分    -> 10
//	1時間30分  -> 90
//	2 hours   -> 120
//	30秒      -> 0.5
func NormalizeDuration(phrase string) (minutes float64, ok bool) {
	s := strings.ToLower(durationReplacer.Replace(phrase))

	if m := rangePattern.FindStringSubmatch(s); m != nil {
		hiUnit := m[4]
		loUnit := m[2]
		if loUnit == "" {
			loUnit = hiUnit
		}
		lo := toMinutes(m[1], loUnit)
		hi := toMinutes(m[3], hiUnit)
		if lo > hi {
			return lo, true
		}
		return hi, true
	}

	if parts := partPattern.FindAllStringSubmatch(s, -1); len(parts) > 0 {
		var total float64
		for _, p := range parts {
			total += toMinutes(p[1], p[2])
		}
		return total, true
	}

	if m := barePattern.FindString(s); m != "" {
		return toMinutes(m, ""), true
	}
	return 0, false
}

func toMinutes(number, unit string) float64 {
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0
	}
	switch {
	case unit == "時間半":
		return v*60 + 30
	case unit == "時間", strings.HasPrefix(unit, "h"):
		return v * 60
	case unit == "秒", strings.HasPrefix(unit, "s"):
		return v / 60
	default:
		return v
	}
}

// SumMinutes adds up a list of durations in minutes
func SumMinutes(minutes []float64) float64 {
	var total float64
	for _, m := range minutes {
		total += m
	}
	return total
}
