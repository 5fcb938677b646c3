package filter

import (
	"regexp"
	"strconv"
)

// A range is tried before a single figure at each position, so "2-4 years"
// reads as 2 instead of the "4 years" tail.
var yearsRe = regexp.MustCompile(`(?i)(\d+)\s*(?:-|to)\s*\d+\s*years|(\d+)\s*\+?\s*years`)

// ParseYears extracts the minimum years of experience a description asks
// for: N from "N years"/"N+ years", the lower bound from "N-M years" or
// "N to M years". ok is false when nothing matches.
func ParseYears(text string) (years int, ok bool) {
	m := yearsRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
