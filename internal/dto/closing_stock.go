package dto

import "github.com/SscSPs/tally_ledger_store/internal/core/domain"

// ReplaceClosingStockRequest swaps a tenant's closing stock set.
type ReplaceClosingStockRequest struct {
	TenantRequest
	Stock []domain.ClosingStock `json:"stock"`
}

// ListClosingStockResponse lists a tenant's closing stock.
type ListClosingStockResponse struct {
	Stock []domain.ClosingStock `json:"stock"`
}
