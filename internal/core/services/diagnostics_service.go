package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// diagnosticsService runs the read-only integrity checks.
type diagnosticsService struct {
	BaseService
	diagnosticsRepo portsrepo.DiagnosticsRepository
	masterSvc       portssvc.MasterReaderSvc
	epsilon         decimal.Decimal
}

func NewDiagnosticsService(repo portsrepo.DiagnosticsRepository, masterSvc portssvc.MasterReaderSvc, epsilon decimal.Decimal) portssvc.DiagnosticsSvc {
	return &diagnosticsService{diagnosticsRepo: repo, masterSvc: masterSvc, epsilon: epsilon}
}

var _ portssvc.DiagnosticsSvc = (*diagnosticsService)(nil)

func (s *diagnosticsService) VerifyLedgerBalance(ctx context.Context, tenant domain.Tenant) (*domain.BalanceReport, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	report := &domain.BalanceReport{}
	var err error

	if report.Imbalanced, err = s.diagnosticsRepo.FindImbalancedVouchers(ctx, tenant, s.epsilon); err != nil {
		s.LogError(ctx, err, "Failed to find imbalanced vouchers")
		return nil, err
	}
	if report.Orphans, err = s.diagnosticsRepo.FindOrphanLegs(ctx, tenant); err != nil {
		s.LogError(ctx, err, "Failed to find orphan legs")
		return nil, err
	}
	if report.Dangling, err = s.diagnosticsRepo.FindDanglingReferences(ctx, tenant); err != nil {
		s.LogError(ctx, err, "Failed to find dangling references")
		return nil, err
	}
	if report.BridgeMismatches, err = s.diagnosticsRepo.FindBridgeMismatches(ctx, tenant, s.epsilon); err != nil {
		s.LogError(ctx, err, "Failed to find inventory bridge mismatches")
		return nil, err
	}
	report.Sort()

	if !report.Clean() {
		s.GetLogger(ctx).Warn("Ledger verification found problems",
			slog.Int("imbalanced_vouchers", len(report.Imbalanced)),
			slog.Int("orphan_legs", len(report.Orphans)),
			slog.Int("dangling_references", len(report.Dangling)),
			slog.Int("bridge_mismatches", len(report.BridgeMismatches)))
	}
	return report, nil
}

// Diagnose combines the hierarchy and ledger checks. Hierarchy violations
// are reported, never returned as an error.
func (s *diagnosticsService) Diagnose(ctx context.Context, tenant domain.Tenant) (*domain.DiagnosticsReport, error) {
	hierarchy, err := s.masterSvc.VerifyHierarchy(ctx, tenant)
	if err != nil && !errors.Is(err, apperrors.ErrHierarchy) {
		return nil, err
	}
	balance, err := s.VerifyLedgerBalance(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return &domain.DiagnosticsReport{Tenant: tenant, Hierarchy: hierarchy, Balance: balance}, nil
}
