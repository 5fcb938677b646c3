package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"jobalert/internal/domain"
)

// Reason names the first criterion a posting failed.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonKeyword    Reason = "keyword"
	ReasonLocation   Reason = "location"
	ReasonSeniority  Reason = "seniority"
	ReasonExperience Reason = "experience"
)

// Terms this short only match a whole location token ("in" must not hit "dublin").
const shortTermLen = 3

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Matcher applies a Criteria. It holds no mutable state and is safe for
// concurrent use.
type Matcher struct {
	keywords      []string
	locations     []string
	excludeSenior bool
	maxYears      *int
}

func NewMatcher(c Criteria) *Matcher {
	m := &Matcher{
		keywords:      lowerAll(c.Keywords),
		locations:     lowerAll(c.Locations),
		excludeSenior: c.ExcludeSenior,
	}
	if c.MaxYears != nil {
		v := *c.MaxYears
		m.maxYears = &v
	}
	return m
}

// Apply returns the postings that pass every criterion, in input order.
// The input slice is not modified.
func Apply(postings []domain.Posting, c Criteria) []domain.Posting {
	return NewMatcher(c).Apply(postings)
}

// Explain reports whether p passes c and, if not, which criterion failed.
func Explain(p domain.Posting, c Criteria) (bool, Reason) {
	return NewMatcher(c).Explain(p)
}

func (m *Matcher) Apply(postings []domain.Posting) []domain.Posting {
	if len(postings) == 0 {
		return nil
	}
	out := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		if ok, _ := m.Explain(p); ok {
			out = append(out, p)
		}
	}
	return out
}

// Explain checks keyword, location, seniority, then experience; the cheap
// string checks run before the description is scanned.
func (m *Matcher) Explain(p domain.Posting) (bool, Reason) {
	title := strings.ToLower(p.Title)

	if len(m.keywords) > 0 && !containsAny(title, m.keywords) {
		return false, ReasonKeyword
	}

	if len(m.locations) > 0 && !m.locationMatches(strings.ToLower(p.Location)) {
		return false, ReasonLocation
	}

	if m.excludeSenior && containsAny(title, SeniorMarkers) {
		return false, ReasonSeniority
	}

	if m.maxYears != nil {
		if yrs, ok := ParseYears(p.Description); ok && yrs > *m.maxYears {
			return false, ReasonExperience
		}
	}

	return true, ReasonNone
}

func (m *Matcher) locationMatches(location string) bool {
	var tokens map[string]struct{}
	for _, term := range m.locations {
		if utf8.RuneCountInString(term) <= shortTermLen {
			if tokens == nil {
				tokens = tokenize(location)
			}
			if _, ok := tokens[term]; ok {
				return true
			}
			continue
		}
		// Long terms are plain substrings of the location text; there is no
		// spelling tolerance beyond that.
		if strings.Contains(location, term) {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]struct{} {
	found := tokenRe.FindAllString(strings.ToLower(text), -1)
	out := make(map[string]struct{}, len(found))
	for _, t := range found {
		out[t] = struct{}{}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
