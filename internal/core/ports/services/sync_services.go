package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// SyncSvc loads producer batches in dependency order.
type SyncSvc interface {
	Run(ctx context.Context, batch domain.SyncBatch) (*domain.SyncReport, error)
	RunAll(ctx context.Context, batches []domain.SyncBatch) ([]*domain.SyncReport, error)
}
