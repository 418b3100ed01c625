package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DiagnosticsRepository runs the read-only integrity queries.
type DiagnosticsRepository interface {
	FindImbalancedVouchers(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.VoucherImbalance, error)
	FindOrphanLegs(ctx context.Context, tenant domain.Tenant) ([]domain.OrphanLeg, error)
	FindDanglingReferences(ctx context.Context, tenant domain.Tenant) ([]domain.DanglingReference, error)
	FindBridgeMismatches(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.BridgeMismatch, error)
}
