package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// voucherService validates and commits vouchers with their legs.
type voucherService struct {
	BaseService
	voucherRepo portsrepo.VoucherRepositoryFacade
	epsilon     decimal.Decimal
}

// NewVoucherService creates a voucher service using epsilon as the balance tolerance.
func NewVoucherService(repo portsrepo.VoucherRepositoryFacade, epsilon decimal.Decimal) portssvc.VoucherSvc {
	return &voucherService{voucherRepo: repo, epsilon: epsilon}
}

var _ portssvc.VoucherSvc = (*voucherService)(nil)

// checkHeader rejects headers missing a field every voucher must carry.
func checkHeader(h domain.Voucher) error {
	switch {
	case strings.TrimSpace(h.GUID) == "":
		return &apperrors.MissingHeaderFieldError{GUID: h.GUID, Field: "guid"}
	case h.Date.IsZero():
		return &apperrors.MissingHeaderFieldError{GUID: h.GUID, Field: "date"}
	case strings.TrimSpace(h.PartyName) == "":
		return &apperrors.MissingHeaderFieldError{GUID: h.GUID, Field: "party_name"}
	case strings.TrimSpace(h.PlaceOfSupply) == "":
		return &apperrors.MissingHeaderFieldError{GUID: h.GUID, Field: "place_of_supply"}
	}
	return nil
}

func (s *voucherService) CommitVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (domain.CommitResult, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return domain.CommitResult{}, err
	}

	// 1. Header
	if err := checkHeader(batch.Header); err != nil {
		return domain.CommitResult{}, err
	}
	guid := batch.Header.GUID

	// 2. Leg binding
	if err := batch.BindLegs(); err != nil {
		return domain.CommitResult{}, err
	}

	// 3. Leg columns
	for _, leg := range batch.Legs() {
		if err := domain.MustTable(leg.Table()).CheckRequired(guid, leg.Values()); err != nil {
			return domain.CommitResult{}, err
		}
	}

	// 4-5. Double entry and inventory
	if err := accounting.ValidateVoucher(batch, s.epsilon); err != nil {
		s.LogDebug(ctx, "Voucher rejected", slog.String("guid", guid), slog.String("error", err.Error()))
		return domain.CommitResult{}, err
	}

	inserted, err := s.voucherRepo.ReplaceVoucher(ctx, tenant, batch)
	if err != nil {
		s.LogError(ctx, err, "Failed to commit voucher", slog.String("guid", guid))
		return domain.CommitResult{}, err
	}

	s.LogDebug(ctx, "Voucher committed", slog.String("guid", guid), slog.Bool("inserted", inserted))
	return domain.CommitResult{GUID: guid, Inserted: inserted, Legs: batch.LegCounts()}, nil
}
