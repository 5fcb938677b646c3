package poll_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/filter"
	"jobalert/internal/ingest/ats"
	"jobalert/internal/ingest/ats/greenhouse"
	"jobalert/internal/ingest/ats/lever"
	"jobalert/internal/poll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFetcher struct {
	byName map[string][]domain.Posting
	delay  map[string]time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *mapFetcher) Fetch(ctx context.Context, co domain.Company) []domain.Posting {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if d := f.delay[co.Name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil
		}
	}
	return f.byName[co.Name]
}

type countingContacts struct {
	mu    sync.Mutex
	asked []string
}

func (c *countingContacts) FindContacts(_ context.Context, company string) []domain.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, company)
	return []domain.Contact{{Name: "Recruiter at " + company}}
}

func intPtr(v int) *int { return &v }

func TestRunOnceEmptyCompanies(t *testing.T) {
	res, ok := poll.RunOnce(context.Background(), nil, filter.Criteria{}, poll.Deps{Fetcher: &mapFetcher{}})
	assert.False(t, ok)
	assert.True(t, res.Report.Empty())
}

func TestRunOnceOmitsCompaniesWithoutMatches(t *testing.T) {
	f := &mapFetcher{byName: map[string][]domain.Posting{
		"A": {{Title: "Senior Engineer"}, {Title: "Staff Engineer"}},
		"B": {{Title: "Engineer"}},
		"C": nil,
	}}
	cl := &countingContacts{}
	companies := []domain.Company{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	res, ok := poll.RunOnce(context.Background(), companies, filter.NewCriteria("", "", true, nil), poll.Deps{Fetcher: f, Contacts: cl})
	require.True(t, ok)

	require.Len(t, res.Report, 1)
	assert.Equal(t, "B", res.Report[0].Company)
	assert.Equal(t, 1, res.Report[0].JobCount)
	assert.Equal(t, []string{"B"}, cl.asked, "contacts are only looked up for companies with matches")
	assert.Equal(t, poll.Stats{Companies: 3, Fetched: 3, Matched: 1, WithMatches: 1}, res.Stats)
}

func TestRunOnceKeepsInputOrder(t *testing.T) {
	f := &mapFetcher{
		byName: map[string][]domain.Posting{
			"first":  {{Title: "Engineer 1"}},
			"second": {{Title: "Engineer 2"}},
			"third":  {{Title: "Engineer 3"}},
			"fourth": {{Title: "Engineer 4"}},
		},
		// first finishes last
		delay: map[string]time.Duration{"first": 60 * time.Millisecond, "second": 30 * time.Millisecond},
	}
	companies := []domain.Company{{Name: "first"}, {Name: "second"}, {Name: "third"}, {Name: "fourth"}}

	res, ok := poll.RunOnce(context.Background(), companies, filter.Criteria{}, poll.Deps{Fetcher: f, Workers: 4})
	require.True(t, ok)

	var got []string
	for _, r := range res.Report {
		got = append(got, r.Company)
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, got)
	assert.Empty(t, res.Report[0].Contacts)
	assert.NotNil(t, res.Report[0].Contacts)
}

func TestRunOnceBoundsConcurrency(t *testing.T) {
	f := &mapFetcher{byName: map[string][]domain.Posting{}, delay: map[string]time.Duration{}}
	var companies []domain.Company
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		companies = append(companies, domain.Company{Name: name})
		f.delay[name] = 20 * time.Millisecond
	}

	_, ok := poll.RunOnce(context.Background(), companies, filter.Criteria{}, poll.Deps{Fetcher: f, Workers: 2})
	require.True(t, ok)
	assert.LessOrEqual(t, f.peak.Load(), int32(2))
}

func TestRunOnceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &mapFetcher{byName: map[string][]domain.Posting{"A": {{Title: "Engineer"}}}}
	res, ok := poll.RunOnce(ctx, []domain.Company{{Name: "A"}}, filter.Criteria{}, poll.Deps{Fetcher: f})
	assert.False(t, ok)
	assert.True(t, res.Report.Empty())
}

func newDispatcher(t *testing.T, ghURL, lvURL string, timeout time.Duration) *ats.Dispatcher {
	t.Helper()
	return ats.NewDispatcher(nil, nil,
		greenhouse.New(greenhouse.Config{BaseURL: ghURL, Timeout: timeout}, nil),
		lever.New(lever.Config{BaseURL: lvURL, Timeout: timeout}, nil),
	)
}

func TestRunOnceEndToEnd(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"jobs":[{
			"title":"Software Engineer",
			"absolute_url":"https://boards.greenhouse.io/acme/jobs/1",
			"location":{"name":"Remote - US"},
			"departments":[{"name":"Engineering"}],
			"content":"2+ years"
		}]}`))
	}))
	defer gh.Close()

	lv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/beta" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{
			"id":"x",
			"text":"Senior Software Engineer",
			"hostedUrl":"https://jobs.lever.co/beta/x",
			"categories":{"location":"NYC","team":"Eng"}
		}]`))
	}))
	defer lv.Close()

	companies := []domain.Company{
		{Name: "A", ATS: "greenhouse", Slug: "acme"},
		{Name: "B", ATS: "lever", Slug: "beta"},
	}
	criteria := filter.NewCriteria("engineer", "", true, intPtr(3))

	res, ok := poll.RunOnce(context.Background(), companies, criteria, poll.Deps{
		Fetcher: newDispatcher(t, gh.URL, lv.URL, 0),
	})
	require.True(t, ok)

	require.Len(t, res.Report, 1)
	a := res.Report[0]
	assert.Equal(t, "A", a.Company)
	assert.Equal(t, 1, a.JobCount)
	assert.Equal(t, domain.Posting{
		Title:       "Software Engineer",
		Location:    "Remote - US",
		URL:         "https://boards.greenhouse.io/acme/jobs/1",
		Department:  "Engineering",
		Remote:      true,
		Description: "2+ years",
	}, a.Jobs[0])
	assert.Equal(t, 2, res.Stats.Fetched)
}

func TestRunOnceProviderFailureIsolation(t *testing.T) {
	release := make(chan struct{})
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer gh.Close()
	defer close(release)

	lv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/beta/1","categories":{"location":"Berlin"}}]`))
	}))
	defer lv.Close()

	companies := []domain.Company{
		{Name: "A", ATS: "greenhouse", Slug: "acme"},
		{Name: "B", ATS: "lever", Slug: "beta"},
		{Name: "C", ATS: "workday", Slug: "gamma"},
		{Name: "D", ATS: "lever"},
	}

	res, ok := poll.RunOnce(context.Background(), companies, filter.NewCriteria("engineer", "", true, nil), poll.Deps{
		Fetcher: newDispatcher(t, gh.URL, lv.URL, 100*time.Millisecond),
	})
	require.True(t, ok)

	require.Len(t, res.Report, 1)
	assert.Equal(t, "B", res.Report[0].Company)
	assert.Equal(t, "Backend Engineer", res.Report[0].Jobs[0].Title)
}
