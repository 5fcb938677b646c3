package smartrecruiters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"jobalert/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListJobsPages(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/companies/gamma/postings", r.URL.Path)
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		n, _ := strconv.Atoi(offset)
		if n == 0 {
			fmt.Fprint(w, `{"totalFound":101,"content":[
				{"id":"1","name":"Backend Engineer","location":{"city":"Berlin","country":"de"},"department":{"label":"Platform"}},
				{"name":"No id, dropped"}
			]}`)
			return
		}
		fmt.Fprint(w, `{"totalFound":101,"content":[
			{"uuid":"u-2","name":"Support Engineer","location":{"city":"Austin","region":"TX","remote":true}}
		]}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, JobsURL: "https://jobs.example"}, nil)
	jobs, err := c.ListJobs(context.Background(), domain.Company{Name: "Gamma", ATS: "smartrecruiters", Slug: "gamma"})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "100"}, offsets)
	assert.Equal(t, []domain.Posting{
		{
			Title:      "Backend Engineer",
			Location:   "Berlin, de",
			URL:        "https://jobs.example/gamma/1",
			Department: "Platform",
		},
		{
			Title:    "Support Engineer",
			Location: "Austin, TX",
			URL:      "https://jobs.example/gamma/u-2",
			Remote:   true,
		},
	}, jobs)
}

func TestListJobsStopsOnEmptyPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	jobs, err := New(Config{BaseURL: srv.URL}, nil).ListJobs(context.Background(), domain.Company{Slug: "empty"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, calls)
}

func TestListJobsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/companies/broken/postings" {
			fmt.Fprint(w, `{"content": [`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)

	_, err := c.ListJobs(context.Background(), domain.Company{Slug: "missing"})
	assert.ErrorContains(t, err, "smartrecruiters status 404")

	_, err = c.ListJobs(context.Background(), domain.Company{Slug: "broken"})
	assert.ErrorContains(t, err, "smartrecruiters decode")

	jobs, err := c.ListJobs(context.Background(), domain.Company{Slug: "  "})
	assert.NoError(t, err)
	assert.Nil(t, jobs)
}
