package services_test

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock MasterRepository ---
type MockMasterRepository struct {
	mock.Mock
}

var _ portsrepo.MasterRepositoryFacade = (*MockMasterRepository)(nil)

func (m *MockMasterRepository) ListMasterNodes(ctx context.Context, tenant domain.Tenant) ([]domain.MasterNode, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MasterNode), args.Error(1)
}

func (m *MockMasterRepository) UpsertMaster(ctx context.Context, tenant domain.Tenant, kind domain.MasterKind, values []any) (bool, error) {
	args := m.Called(ctx, tenant, kind, values)
	return args.Bool(0), args.Error(1)
}

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

var _ portsrepo.RateRepositoryFacade = (*MockRateRepository)(nil)

func (m *MockRateRepository) FindEffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, error) {
	args := m.Called(ctx, tenant, kind, item, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateFact), args.Error(1)
}

func (m *MockRateRepository) InsertRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, date domain.Date, values []any, policy domain.DuplicatePolicy) error {
	args := m.Called(ctx, tenant, kind, item, date, values, policy)
	return args.Error(0)
}

// --- Mock VoucherRepository ---
type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryFacade = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) CountLegs(ctx context.Context, tenant domain.Tenant, guid string) (map[string]int, error) {
	args := m.Called(ctx, tenant, guid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockVoucherRepository) ReplaceVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (bool, error) {
	args := m.Called(ctx, tenant, batch)
	return args.Bool(0), args.Error(1)
}

// --- Mock DiagnosticsRepository ---
type MockDiagnosticsRepository struct {
	mock.Mock
}

var _ portsrepo.DiagnosticsRepository = (*MockDiagnosticsRepository)(nil)

func (m *MockDiagnosticsRepository) FindImbalancedVouchers(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.VoucherImbalance, error) {
	args := m.Called(ctx, tenant, epsilon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VoucherImbalance), args.Error(1)
}

func (m *MockDiagnosticsRepository) FindOrphanLegs(ctx context.Context, tenant domain.Tenant) ([]domain.OrphanLeg, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrphanLeg), args.Error(1)
}

func (m *MockDiagnosticsRepository) FindDanglingReferences(ctx context.Context, tenant domain.Tenant) ([]domain.DanglingReference, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DanglingReference), args.Error(1)
}

func (m *MockDiagnosticsRepository) FindBridgeMismatches(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.BridgeMismatch, error) {
	args := m.Called(ctx, tenant, epsilon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BridgeMismatch), args.Error(1)
}
