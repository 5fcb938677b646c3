// Package contacts finds people to reach out to at hiring companies.
package contacts

import (
	"context"

	"jobalert/internal/domain"
)

// Lookup finds contacts for a company. Implementations must not fail; a
// company with nobody known simply yields an empty list.
type Lookup interface {
	FindContacts(ctx context.Context, company string) []domain.Contact
}

// Noop is the lookup used until a people-data provider is wired in.
type Noop struct{}

func (Noop) FindContacts(context.Context, string) []domain.Contact {
	return []domain.Contact{}
}
