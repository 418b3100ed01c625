package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// VoucherReader defines read operations for vouchers
type VoucherReader interface {
	// CountLegs counts the stored legs of a voucher per table.
	CountLegs(ctx context.Context, tenant domain.Tenant, guid string) (map[string]int, error)
}

// VoucherWriter defines write operations for vouchers
type VoucherWriter interface {
	// ReplaceVoucher upserts the header and replaces every leg of the voucher
	// atomically. It reports whether the header was new.
	ReplaceVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (bool, error)
}

// VoucherRepositoryFacade combines all voucher repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
