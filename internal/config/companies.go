package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"jobalert/internal/domain"

	"gopkg.in/yaml.v3"
)

var ErrCompaniesNotFound = errors.New("companies file not found")

// CompaniesFile is the on-disk layout of the company list.
type CompaniesFile struct {
	Companies []domain.Company `yaml:"companies"`
}

// LoadCompanies reads the company list at path. Entries are trimmed and the
// ATS tag lowercased; entries without a name are dropped with a warning. An
// empty file yields an empty list, not an error.
func LoadCompanies(path string) ([]domain.Company, Validation, error) {
	var res Validation

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, res, fmt.Errorf("%w: %s", ErrCompaniesNotFound, path)
		}
		return nil, res, fmt.Errorf("reading companies %s: %w", path, err)
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, res, fmt.Errorf("parsing companies %s: %w", path, err)
	}

	out := make([]domain.Company, 0, len(cf.Companies))
	for i, c := range cf.Companies {
		c.Name = strings.TrimSpace(c.Name)
		c.CareersURL = strings.TrimSpace(c.CareersURL)
		c.ATS = strings.ToLower(strings.TrimSpace(c.ATS))
		c.Slug = strings.TrimSpace(c.Slug)

		if c.Name == "" {
			res.addWarn("companies[%d] has no name; skipped.", i)
			continue
		}
		if c.ATS != "" && !c.HasSlug() {
			res.addWarn("company %q has ats %q but no slug; no postings will be fetched.", c.Name, c.ATS)
		}
		out = append(out, c)
	}
	return out, res, nil
}

// CheckProviders warns about companies whose ATS has no connector.
func CheckProviders(companies []domain.Company, supported func(ats string) bool) Validation {
	var res Validation
	for _, c := range companies {
		if c.ATS == "" {
			res.addWarn("company %q has no ats; skipped at fetch time.", c.Name)
			continue
		}
		if !supported(c.ATS) {
			res.addWarn("company %q uses unsupported ats %q; skipped at fetch time.", c.Name, c.ATS)
		}
	}
	return res
}
