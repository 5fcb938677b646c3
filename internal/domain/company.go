package domain

import "strings"

// Company is one entry of the companies file. ATS and Slug together decide
// which job board is queried.
type Company struct {
	Name       string `yaml:"name" json:"name"`
	CareersURL string `yaml:"careers_url" json:"careers_url,omitempty"`
	ATS        string `yaml:"ats" json:"ats,omitempty"` // greenhouse|lever|workday|unknown
	Slug       string `yaml:"slug" json:"slug,omitempty"`
}

// HasSlug reports whether a board identifier was supplied. Without one no
// postings can be fetched, whatever the ATS.
func (c Company) HasSlug() bool {
	return strings.TrimSpace(c.Slug) != ""
}
