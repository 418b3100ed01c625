package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// OpeningSvc replaces opening balance snapshots.
type OpeningSvc interface {
	SetOpeningBalances(ctx context.Context, tenant domain.Tenant, snapshot domain.OpeningSnapshot) error
}
