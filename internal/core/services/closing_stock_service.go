package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
)

// closingStockService records closing stock valuations.
type closingStockService struct {
	BaseService
	closingRepo portsrepo.ClosingStockRepositoryFacade
}

func NewClosingStockService(repo portsrepo.ClosingStockRepositoryFacade) portssvc.ClosingStockSvcFacade {
	return &closingStockService{closingRepo: repo}
}

var _ portssvc.ClosingStockSvcFacade = (*closingStockService)(nil)

func (s *closingStockService) check(stock domain.ClosingStock) error {
	if err := s.ValidateStruct(stock, domain.TableClosingStock, stock.Key()); err != nil {
		return err
	}
	return domain.MustTable(domain.TableClosingStock).CheckRequired(stock.Key(), stock.Values())
}

func (s *closingStockService) RecordClosingStock(ctx context.Context, tenant domain.Tenant, stock domain.ClosingStock) error {
	if err := s.ValidateTenant(tenant); err != nil {
		return err
	}
	if err := s.check(stock); err != nil {
		return err
	}
	if err := s.closingRepo.SaveClosingStock(ctx, tenant, stock); err != nil {
		s.LogError(ctx, err, "Failed to record closing stock", slog.String("key", stock.Key()))
		return err
	}
	return nil
}

// ReplaceClosingStock swaps the whole set. A later entry for the same
// (ledger, date) replaces an earlier one.
func (s *closingStockService) ReplaceClosingStock(ctx context.Context, tenant domain.Tenant, stock []domain.ClosingStock) error {
	if err := s.ValidateTenant(tenant); err != nil {
		return err
	}
	position := make(map[string]int, len(stock))
	deduped := make([]domain.ClosingStock, 0, len(stock))
	for _, st := range stock {
		if err := s.check(st); err != nil {
			return err
		}
		if i, ok := position[st.Key()]; ok {
			deduped[i] = st
			continue
		}
		position[st.Key()] = len(deduped)
		deduped = append(deduped, st)
	}

	if err := s.closingRepo.ReplaceClosingStock(ctx, tenant, deduped); err != nil {
		s.LogError(ctx, err, "Failed to replace closing stock", slog.Int("rows", len(deduped)))
		return err
	}
	return nil
}

func (s *closingStockService) ListClosingStock(ctx context.Context, tenant domain.Tenant) ([]domain.ClosingStock, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	stock, err := s.closingRepo.ListClosingStock(ctx, tenant)
	if err != nil {
		s.LogError(ctx, err, "Failed to list closing stock")
		return nil, err
	}
	// Return empty slice if nothing is stored, not nil
	if stock == nil {
		return []domain.ClosingStock{}, nil
	}
	return stock, nil
}
