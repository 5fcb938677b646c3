package poll

import (
	"context"
	"time"

	"jobalert/internal/contacts"
	"jobalert/internal/domain"
	"jobalert/internal/filter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 8

	// Upper bound for one company, covering limiter waits plus the
	// connector's own 20s request timeout.
	companyTimeout = 45 * time.Second
)

// Fetcher returns the canonical postings of a company, empty on any failure.
// *ats.Dispatcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, co domain.Company) []domain.Posting
}

type Deps struct {
	Fetcher  Fetcher
	Contacts contacts.Lookup // defaults to contacts.Noop
	Logger   *zap.Logger
	Workers  int // clamped to 1..MaxWorkers, 0 means DefaultWorkers
}

type Stats struct {
	Companies   int // companies processed
	Fetched     int // postings returned by providers
	Matched     int // postings that passed the filter
	WithMatches int // companies present in the report
}

type Result struct {
	Report domain.Report
	Stats  Stats
}

type slot struct {
	fetched int
	result  *domain.CompanyResult
}

// RunOnce fetches, filters and aggregates every company. Companies are
// processed concurrently but the report keeps input order, and companies
// with no surviving posting are left out. ok is false when there was nothing
// to process or ctx ended before every company was handled.
func RunOnce(ctx context.Context, companies []domain.Company, criteria filter.Criteria, deps Deps) (Result, bool) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(companies) == 0 {
		log.Warn("no companies to process")
		return Result{Report: domain.Report{}}, false
	}
	lookup := deps.Contacts
	if lookup == nil {
		lookup = contacts.Noop{}
	}

	matcher := filter.NewMatcher(criteria)
	slots := make([]slot, len(companies))

	var g errgroup.Group
	g.SetLimit(clampWorkers(deps.Workers))

	for i, co := range companies {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			cctx, cancel := context.WithTimeout(ctx, companyTimeout)
			defer cancel()

			postings := deps.Fetcher.Fetch(cctx, co)
			kept := keep(log, matcher, co, postings)

			slots[i].fetched = len(postings)
			log.Info("company processed",
				zap.String("company", co.Name),
				zap.String("ats", co.ATS),
				zap.Int("fetched", len(postings)),
				zap.Int("matched", len(kept)),
			)
			if len(kept) == 0 {
				return nil
			}
			res := domain.NewCompanyResult(co.Name, kept, lookup.FindContacts(cctx, co.Name))
			slots[i].result = &res
			return nil
		})
	}
	_ = g.Wait()

	report := domain.Report{}
	stats := Stats{Companies: len(companies)}
	for _, s := range slots {
		stats.Fetched += s.fetched
		if s.result == nil {
			continue
		}
		stats.Matched += s.result.JobCount
		stats.WithMatches++
		report = append(report, *s.result)
	}

	if err := ctx.Err(); err != nil {
		log.Warn("poll interrupted", zap.Error(err))
		return Result{Report: report, Stats: stats}, false
	}

	log.Info("poll finished",
		zap.Int("companies", stats.Companies),
		zap.Int("fetched", stats.Fetched),
		zap.Int("matched", stats.Matched),
		zap.Int("companies_with_matches", stats.WithMatches),
	)
	return Result{Report: report, Stats: stats}, true
}

func keep(log *zap.Logger, m *filter.Matcher, co domain.Company, postings []domain.Posting) []domain.Posting {
	if len(postings) == 0 {
		return nil
	}
	out := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		ok, why := m.Explain(p)
		if !ok {
			log.Debug("skipped",
				zap.String("company", co.Name),
				zap.String("reason", string(why)),
				zap.String("title", p.Title),
				zap.String("location", p.Location),
				zap.String("url", p.URL),
			)
			continue
		}
		out = append(out, p)
	}
	return out
}

func clampWorkers(n int) int {
	switch {
	case n <= 0:
		return DefaultWorkers
	case n > MaxWorkers:
		return MaxWorkers
	default:
		return n
	}
}
