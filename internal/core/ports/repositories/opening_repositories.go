package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// OpeningReader defines read operations for opening balances
type OpeningReader interface {
	// FindOpeningDate returns the as-of date of the stored snapshot, or apperrors.ErrNotFound.
	FindOpeningDate(ctx context.Context, tenant domain.Tenant) (domain.Date, error)
}

// OpeningWriter defines write operations for opening balances
type OpeningWriter interface {
	// ReplaceOpeningBalances swaps the tenant's opening snapshot in one transaction.
	// Names that match no ledger or stock item fail the whole snapshot.
	ReplaceOpeningBalances(ctx context.Context, tenant domain.Tenant, snapshot domain.OpeningSnapshot) error
}

// OpeningRepositoryFacade combines all opening balance repository interfaces
type OpeningRepositoryFacade interface {
	OpeningReader
	OpeningWriter
}
