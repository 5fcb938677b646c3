package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobalert/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardJSON = `{
  "jobs": [
    {
      "id": 1,
      "title": "Software Engineer",
      "absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
      "content": "&lt;p&gt;You have 2+ years of Go.&lt;/p&gt;",
      "location": {"name": "Remote - US"},
      "departments": [{"name": "Engineering"}, {"name": "Platform"}]
    },
    {
      "id": 2,
      "title": "Office Manager",
      "absolute_url": "https://boards.greenhouse.io/acme/jobs/2",
      "location": {"name": "Berlin"},
      "departments": []
    },
    {
      "id": 3,
      "title": null,
      "location": null
    }
  ]
}`

func TestListJobsNormalizes(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boardJSON))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	jobs, err := c.ListJobs(context.Background(), domain.Company{Name: "Acme", ATS: "greenhouse", Slug: "acme"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/boards/acme/jobs", gotPath)
	assert.Equal(t, "content=true", gotQuery)

	require.Len(t, jobs, 3)
	assert.Equal(t, domain.Posting{
		Title:       "Software Engineer",
		Location:    "Remote - US",
		URL:         "https://boards.greenhouse.io/acme/jobs/1",
		Department:  "Engineering",
		Remote:      true,
		Description: "You have 2+ years of Go.",
	}, jobs[0])

	assert.Equal(t, "Berlin", jobs[1].Location)
	assert.Empty(t, jobs[1].Department)
	assert.False(t, jobs[1].Remote)
	assert.Empty(t, jobs[1].Description)

	assert.Equal(t, domain.Posting{}, jobs[2])
}

func TestListJobsEmptySlugSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	jobs, err := c.ListJobs(context.Background(), domain.Company{Name: "Acme", ATS: "greenhouse"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, calls.Load())
}

func TestListJobsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no such board", http.StatusNotFound)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"jobs": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(Config{BaseURL: srv.URL}, nil)
			jobs, err := c.ListJobs(context.Background(), domain.Company{Name: "Acme", Slug: "acme"})
			assert.Error(t, err)
			assert.Empty(t, jobs)
		})
	}
}

func TestListJobsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := c.ListJobs(context.Background(), domain.Company{Name: "Acme", Slug: "acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greenhouse get")
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{}, nil)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, c.hc.Timeout)
	assert.Equal(t, "greenhouse", c.Type())
}
