package repositories

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// MasterReader defines read operations for master data
type MasterReader interface {
	// ListMasterNodes returns the guid, name and parent of every master of the tenant.
	ListMasterNodes(ctx context.Context, tenant domain.Tenant) ([]domain.MasterNode, error)
}

// MasterWriter defines write operations for master data
type MasterWriter interface {
	// UpsertMaster stores a normalized row of kind's table, replacing any row
	// with the same guid. It reports whether the row was new.
	UpsertMaster(ctx context.Context, tenant domain.Tenant, kind domain.MasterKind, values []any) (bool, error)
}

// MasterRepositoryFacade combines all master repository interfaces
type MasterRepositoryFacade interface {
	MasterReader
	MasterWriter
}
