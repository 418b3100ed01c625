package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// ClosingStockWriterSvc defines write operations on closing stock
type ClosingStockWriterSvc interface {
	RecordClosingStock(ctx context.Context, tenant domain.Tenant, stock domain.ClosingStock) error
	ReplaceClosingStock(ctx context.Context, tenant domain.Tenant, stock []domain.ClosingStock) error
}

// ClosingStockReaderSvc defines read operations on closing stock
type ClosingStockReaderSvc interface {
	ListClosingStock(ctx context.Context, tenant domain.Tenant) ([]domain.ClosingStock, error)
}

// ClosingStockSvcFacade combines all closing stock service interfaces
type ClosingStockSvcFacade interface {
	ClosingStockWriterSvc
	ClosingStockReaderSvc
}
