package ats

import (
	"context"
	"sort"
	"strings"

	"jobalert/internal/domain"

	"go.uber.org/zap"
)

// Connector lists the open postings of one company on one ATS.
// An empty slug yields (nil, nil) without touching the network; transport,
// status and decode failures are returned as errors.
type Connector interface {
	Type() string
	ListJobs(ctx context.Context, company domain.Company) ([]domain.Posting, error)
}

// Observer receives per-provider fetch outcomes.
type Observer interface {
	Fetched(provider string, n int)
	Failed(provider string, err error)
}

// Dispatcher routes a company to the connector registered for its ATS tag
// and turns connector failures into an empty result.
type Dispatcher struct {
	connectors map[string]Connector
	logger     *zap.Logger
	observer   Observer
}

func NewDispatcher(logger *zap.Logger, observer Observer, connectors ...Connector) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		connectors: make(map[string]Connector, len(connectors)),
		logger:     logger,
		observer:   observer,
	}
	for _, c := range connectors {
		d.connectors[NormalizeType(c.Type())] = c
	}
	return d
}

// NormalizeType is the comparison form of an ATS tag.
func NormalizeType(ats string) string {
	return strings.ToLower(strings.TrimSpace(ats))
}

// Supports reports whether a connector is registered for the tag.
func (d *Dispatcher) Supports(ats string) bool {
	_, ok := d.connectors[NormalizeType(ats)]
	return ok
}

// Types lists registered tags, sorted.
func (d *Dispatcher) Types() []string {
	out := make([]string, 0, len(d.connectors))
	for t := range d.connectors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Fetch never fails: unknown ATS tags and provider errors both produce an
// empty list. Errors are logged and reported to the observer.
func (d *Dispatcher) Fetch(ctx context.Context, co domain.Company) []domain.Posting {
	kind := NormalizeType(co.ATS)
	c, ok := d.connectors[kind]
	if !ok {
		d.logger.Debug("no connector for ats",
			zap.String("company", co.Name),
			zap.String("ats", co.ATS),
		)
		return nil
	}

	postings, err := c.ListJobs(ctx, co)
	if err != nil {
		d.logger.Warn("provider fetch failed",
			zap.String("ats", kind),
			zap.String("company", co.Name),
			zap.String("slug", co.Slug),
			zap.Error(err),
		)
		if d.observer != nil {
			d.observer.Failed(kind, err)
		}
		return nil
	}

	if d.observer != nil {
		d.observer.Fetched(kind, len(postings))
	}
	return postings
}
