package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// DiagnosticsSvc runs read-only integrity checks over stored data.
type DiagnosticsSvc interface {
	VerifyLedgerBalance(ctx context.Context, tenant domain.Tenant) (*domain.BalanceReport, error)
	Diagnose(ctx context.Context, tenant domain.Tenant) (*domain.DiagnosticsReport, error)
}
