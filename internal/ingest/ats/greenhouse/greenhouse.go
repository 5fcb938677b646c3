package greenhouse

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
	DefaultBaseURL = "https://boards-api.greenhouse.io"
	DefaultTimeout = 20 * time.Second
)

type Config struct {
	BaseURL string        // defaults to DefaultBaseURL
	Timeout time.Duration // per request, defaults to DefaultTimeout
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

func (c *Connector) Type() string { return "greenhouse" }

// boards-api /v1/boards/<slug>/jobs?content=true
type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

type boardJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"` // entity-escaped html
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (c *Connector) ListJobs(ctx context.Context, co domain.Company) ([]domain.Posting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, nil
	}
	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", c.cfg.BaseURL, url.PathEscape(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse request: %w", err)
	}
	req.Header.Set("User-Agent", "jobalert/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
		return nil, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("greenhouse status %d", res.StatusCode)
	}

	var board boardResponse
	if err := json.NewDecoder(res.Body).Decode(&board); err != nil {
		return nil, fmt.Errorf("greenhouse decode: %w", err)
	}

	out := make([]domain.Posting, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		out = append(out, normalize(j))
	}
	return out, nil
}

func normalize(j boardJob) domain.Posting {
	dept := ""
	if len(j.Departments) > 0 {
		dept = j.Departments[0].Name
	}
	return domain.Posting{
		Title:       j.Title,
		Location:    j.Location.Name,
		URL:         j.AbsoluteURL,
		Department:  dept,
		Remote:      domain.IsRemote(j.Location.Name),
		Description: util.HTMLToText(j.Content),
	}
}
