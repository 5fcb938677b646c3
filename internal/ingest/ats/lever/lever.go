package lever

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
	DefaultBaseURL = "https://api.lever.co"
	DefaultTimeout = 20 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
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
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Connector{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

func (c *Connector) Type() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	ApplyURL   string `json:"applyUrl"`
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

func (c *Connector) ListJobs(ctx context.Context, co domain.Company) ([]domain.Posting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, nil
	}
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", c.cfg.BaseURL, url.PathEscape(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("lever request: %w", err)
	}
	req.Header.Set("User-Agent", "jobalert/1.0 (+local)")

	if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
		return nil, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		out = append(out, normalize(p))
	}
	return out, nil
}

func normalize(p leverPosting) domain.Posting {
	link := p.HostedURL
	if link == "" {
		link = p.ApplyURL
	}
	desc := p.DescriptionPlain
	if desc == "" {
		desc = util.HTMLToText(p.Description)
	}
	return domain.Posting{
		Title:       p.Text,
		Location:    p.Categories.Location,
		URL:         link,
		Department:  p.Categories.Team,
		Remote:      domain.IsRemote(p.Categories.Location),
		Description: desc,
	}
}
