package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
)

// openingService replaces opening balance snapshots.
type openingService struct {
	BaseService
	openingRepo portsrepo.OpeningRepositoryFacade
}

func NewOpeningService(repo portsrepo.OpeningRepositoryFacade) portssvc.OpeningSvc {
	return &openingService{openingRepo: repo}
}

var _ portssvc.OpeningSvc = (*openingService)(nil)

func (s *openingService) SetOpeningBalances(ctx context.Context, tenant domain.Tenant, snapshot domain.OpeningSnapshot) error {
	if err := s.ValidateTenant(tenant); err != nil {
		return err
	}
	if snapshot.AsOf.IsZero() {
		return apperrors.NewValidationError(domain.TableConfig, "", "as_of", "is required")
	}
	if err := s.ValidateStruct(snapshot, "", ""); err != nil {
		return err
	}

	ledgers := make(map[string]bool, len(snapshot.Ledgers))
	for _, l := range snapshot.Ledgers {
		if ledgers[l.Ledger] {
			return apperrors.NewValidationError(domain.TableLedger, "", "name", "ledger "+l.Ledger+" listed twice")
		}
		ledgers[l.Ledger] = true
	}
	items := make(map[string]bool, len(snapshot.StockItems))
	for _, si := range snapshot.StockItems {
		if items[si.Item] {
			return apperrors.NewValidationError(domain.TableStockItem, "", "name", "stock item "+si.Item+" listed twice")
		}
		items[si.Item] = true
	}

	if err := s.openingRepo.ReplaceOpeningBalances(ctx, tenant, snapshot); err != nil {
		s.LogError(ctx, err, "Failed to replace opening balances", slog.String("as_of", snapshot.AsOf.String()))
		return err
	}

	s.LogInfo(ctx, "Opening balances replaced",
		slog.String("as_of", snapshot.AsOf.String()),
		slog.Int("ledgers", len(snapshot.Ledgers)),
		slog.Int("stock_items", len(snapshot.StockItems)),
		slog.Int("bills", len(snapshot.Bills)),
		slog.Int("batches", len(snapshot.Batches)))
	return nil
}
