package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// RateReader defines read operations for the rate timelines
type RateReader interface {
	// FindEffectiveRate returns the fact with the greatest date not after asOf.
	// It returns apperrors.ErrNotFound when the item has no such fact.
	FindEffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, error)
}

// RateWriter defines write operations for the rate timelines
type RateWriter interface {
	// InsertRate appends a normalized row to kind's table. Under keep_last an
	// existing row for the same (item, date) is replaced in the same
	// transaction; under reject it yields a DuplicateKeyError.
	InsertRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, date domain.Date, values []any, policy domain.DuplicatePolicy) error
}

// RateRepositoryFacade combines all rate repository interfaces
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
