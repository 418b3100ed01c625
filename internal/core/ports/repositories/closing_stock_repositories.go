package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// ClosingStockReader defines read operations for closing stock
type ClosingStockReader interface {
	// ListClosingStock returns the tenant's closing stock ordered by ledger and date.
	ListClosingStock(ctx context.Context, tenant domain.Tenant) ([]domain.ClosingStock, error)
}

// ClosingStockWriter defines write operations for closing stock
type ClosingStockWriter interface {
	// SaveClosingStock replaces the row for the same (ledger, stock_date).
	SaveClosingStock(ctx context.Context, tenant domain.Tenant, stock domain.ClosingStock) error
	// ReplaceClosingStock replaces the tenant's whole closing stock set.
	ReplaceClosingStock(ctx context.Context, tenant domain.Tenant, stock []domain.ClosingStock) error
}

// ClosingStockRepositoryFacade combines all closing stock repository interfaces
type ClosingStockRepositoryFacade interface {
	ClosingStockReader
	ClosingStockWriter
}
