package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// MasterWriterSvc defines write operations on master records
type MasterWriterSvc interface {
	UpsertMaster(ctx context.Context, tenant domain.Tenant, record domain.MasterRecord) (domain.UpsertResult, error)
}

// MasterReaderSvc defines read operations on master records
type MasterReaderSvc interface {
	BuildNameIndex(ctx context.Context, tenant domain.Tenant) (*domain.NameIndex, error)
	// VerifyHierarchy returns the full report. In strict mode a report with
	// violations is also returned as a HierarchyError.
	VerifyHierarchy(ctx context.Context, tenant domain.Tenant) (*domain.HierarchyReport, error)
}

// MasterSvcFacade combines all master service interfaces
type MasterSvcFacade interface {
	MasterWriterSvc
	MasterReaderSvc
}
