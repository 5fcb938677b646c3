package domain

import "encoding/json"

// Contact is a person worth reaching out to at a hiring company.
type Contact struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// CompanyResult holds the postings of one company that survived filtering.
type CompanyResult struct {
	Company  string    `json:"company"`
	JobCount int       `json:"job_count"`
	Jobs     []Posting `json:"jobs"`
	Contacts []Contact `json:"contacts"`
}

// NewCompanyResult builds a result with JobCount in sync with jobs. A nil
// contacts slice is stored as empty so it renders as [] rather than null.
func NewCompanyResult(company string, jobs []Posting, contacts []Contact) CompanyResult {
	if contacts == nil {
		contacts = []Contact{}
	}
	return CompanyResult{
		Company:  company,
		JobCount: len(jobs),
		Jobs:     jobs,
		Contacts: contacts,
	}
}

// Report is the ordered list of company results for one run.
type Report []CompanyResult

func (r Report) Empty() bool { return len(r) == 0 }

// JobCount sums the matched postings across all companies.
func (r Report) JobCount() int {
	n := 0
	for _, c := range r {
		n += c.JobCount
	}
	return n
}

// Body renders the report as two-space indented JSON, the form mailed out.
func (r Report) Body() (string, error) {
	if r == nil {
		r = Report{}
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
