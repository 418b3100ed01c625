package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
)

// masterService implements the MasterSvcFacade interface
type masterService struct {
	BaseService
	masterRepo      portsrepo.MasterRepositoryFacade
	strictHierarchy bool
	rootNames       []string
}

// MasterServiceOption is a functional option for configuring the master service
type MasterServiceOption func(*masterService)

// WithStrictHierarchy makes VerifyHierarchy fail on unresolved parents and cycles
func WithStrictHierarchy(strict bool) MasterServiceOption {
	return func(s *masterService) {
		s.strictHierarchy = strict
	}
}

// WithRootNames sets the parent names treated as hierarchy roots
func WithRootNames(names []string) MasterServiceOption {
	return func(s *masterService) {
		if len(names) > 0 {
			s.rootNames = names
		}
	}
}

// NewMasterService creates a new master service with the provided options
func NewMasterService(repo portsrepo.MasterRepositoryFacade, options ...MasterServiceOption) portssvc.MasterSvcFacade {
	svc := &masterService{
		masterRepo: repo,
		rootNames:  domain.DefaultRootNames,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.MasterSvcFacade = (*masterService)(nil)

func (s *masterService) UpsertMaster(ctx context.Context, tenant domain.Tenant, record domain.MasterRecord) (domain.UpsertResult, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return domain.UpsertResult{}, err
	}
	if !record.Kind.Valid() {
		return domain.UpsertResult{}, apperrors.NewValidationError("", record.GUID, "kind", fmt.Sprintf("unknown master kind %q", record.Kind))
	}
	table := domain.MustTable(record.Kind.Table())
	if err := s.ValidateStruct(record, table.Name, record.GUID); err != nil {
		return domain.UpsertResult{}, err
	}

	fields := make(domain.Fields, len(record.Fields)+1)
	for k, v := range record.Fields {
		fields[k] = v
	}
	if g, ok := fields["guid"]; ok && g != record.GUID {
		return domain.UpsertResult{}, apperrors.NewValidationError(table.Name, record.GUID, "guid", fmt.Sprintf("fields carry a different guid %v", g))
	}
	fields["guid"] = record.GUID

	values, err := table.Normalize(record.GUID, fields)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	inserted, err := s.masterRepo.UpsertMaster(ctx, tenant, record.Kind, values)
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert master",
			slog.String("kind", string(record.Kind)),
			slog.String("guid", record.GUID))
		return domain.UpsertResult{}, err
	}

	s.LogDebug(ctx, "Master upserted",
		slog.String("kind", string(record.Kind)),
		slog.String("guid", record.GUID),
		slog.Bool("inserted", inserted))
	return domain.UpsertResult{Kind: record.Kind, GUID: record.GUID, Inserted: inserted}, nil
}

func (s *masterService) BuildNameIndex(ctx context.Context, tenant domain.Tenant) (*domain.NameIndex, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	nodes, err := s.masterRepo.ListMasterNodes(ctx, tenant)
	if err != nil {
		s.LogError(ctx, err, "Failed to list master nodes")
		return nil, err
	}
	return domain.NewNameIndex(nodes), nil
}

func (s *masterService) VerifyHierarchy(ctx context.Context, tenant domain.Tenant) (*domain.HierarchyReport, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	nodes, err := s.masterRepo.ListMasterNodes(ctx, tenant)
	if err != nil {
		s.LogError(ctx, err, "Failed to list master nodes")
		return nil, err
	}

	report := domain.VerifyHierarchy(nodes, s.rootNames)
	if !report.Clean() {
		s.GetLogger(ctx).Warn("Master hierarchy has violations",
			slog.Int("unresolved_parents", len(report.Unresolved)),
			slog.Int("cycles", len(report.Cycles)),
			slog.Int("duplicate_names", len(report.Duplicates)))
		if s.strictHierarchy {
			return report, report.Err()
		}
	}
	return report, nil
}
