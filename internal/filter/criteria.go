package filter

import "strings"

// Criteria decides which postings are reportable. Build it with NewCriteria;
// the zero value matches everything except that seniority exclusion is off.
type Criteria struct {
	Keywords      []string // OR'd against the title
	Locations     []string // OR'd against the location
	ExcludeSenior bool
	MaxYears      *int // nil disables the experience cap
}

func NewCriteria(keywords, locations string, excludeSenior bool, maxYears *int) Criteria {
	return Criteria{
		Keywords:      ParseTerms(keywords),
		Locations:     ParseTerms(locations),
		ExcludeSenior: excludeSenior,
		MaxYears:      maxYears,
	}
}

// ParseTerms splits a comma-separated filter string into lowercase,
// trimmed, non-empty terms.
func ParseTerms(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SeniorMarkers are title fragments that mark a role as senior. The trailing
// space on "lead " and "head " keeps words like "leadership" out.
var SeniorMarkers = []string{
	"senior",
	"sr.",
	"staff",
	"principal",
	"lead ",
	"leader",
	"manager",
	"director",
	"head ",
}
