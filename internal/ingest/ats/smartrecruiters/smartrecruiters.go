package smartrecruiters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/ingest/util"
)

const (
	DefaultBaseURL = "https://api.smartrecruiters.com"
	DefaultTimeout = 20 * time.Second

	pageSize = 100
	// a board larger than this is cut off rather than paged forever
	maxOffset = 5000
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// JobsURL is the public posting page root used to build links.
	JobsURL string
}

type Connector struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.JobsURL == "" {
		cfg.JobsURL = "https://jobs.smartrecruiters.com"
	}
	cfg.JobsURL = strings.TrimRight(cfg.JobsURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Connector{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

func (c *Connector) Type() string { return "smartrecruiters" }

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
}

type posting struct {
	ID       string `json:"id"`
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	Location struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

// ListJobs pages through the public postings API. The listing carries no
// description, so experience caps never reject these postings.
func (c *Connector) ListJobs(ctx context.Context, co domain.Company) ([]domain.Posting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, nil
	}
	base := fmt.Sprintf("%s/v1/companies/%s/postings", c.cfg.BaseURL, url.PathEscape(slug))

	var out []domain.Posting
	for offset := 0; offset <= maxOffset; offset += pageSize {
		page, err := c.page(ctx, fmt.Sprintf("%s?limit=%d&offset=%d", base, pageSize, offset))
		if err != nil {
			return nil, err
		}
		if len(page.Content) == 0 {
			break
		}
		for _, p := range page.Content {
			if jp, ok := c.normalize(slug, p); ok {
				out = append(out, jp)
			}
		}
		if page.TotalFound > 0 && offset+pageSize >= page.TotalFound {
			break
		}
	}
	return out, nil
}

func (c *Connector) page(ctx context.Context, apiURL string) (postingsResponse, error) {
	var pr postingsResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return pr, fmt.Errorf("smartrecruiters request: %w", err)
	}
	req.Header.Set("User-Agent", "jobalert/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
		return pr, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return pr, fmt.Errorf("smartrecruiters get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return pr, fmt.Errorf("smartrecruiters status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return pr, fmt.Errorf("smartrecruiters decode: %w", err)
	}
	return pr, nil
}

func (c *Connector) normalize(slug string, p posting) (domain.Posting, bool) {
	id := firstNonEmpty(p.ID, p.UUID, p.Ref)
	if id == "" {
		return domain.Posting{}, false
	}
	loc := strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", ")
	return domain.Posting{
		Title:      strings.TrimSpace(p.Name),
		Location:   loc,
		URL:        fmt.Sprintf("%s/%s/%s", c.cfg.JobsURL, url.PathEscape(slug), url.PathEscape(id)),
		Department: strings.TrimSpace(p.Department.Label),
		Remote:     p.Location.Remote || domain.IsRemote(loc),
	}, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
