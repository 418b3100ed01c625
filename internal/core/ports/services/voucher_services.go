package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// VoucherSvc commits vouchers with all of their legs.
type VoucherSvc interface {
	CommitVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (domain.CommitResult, error)
}
