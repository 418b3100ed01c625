package services

import (
	"github.com/SscSPs/tally_ledger_store/internal/core/ports"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, locker ports.TenantLocker) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Master service first since diagnostics and sync depend on it
	container.Master = NewMasterService(
		repos.MasterRepo,
		WithStrictHierarchy(cfg.StrictHierarchy),
		WithRootNames(cfg.HierarchyRootNames),
	)

	container.Rate = NewRateService(repos.RateRepo, cfg.RateDuplicatePolicy)
	container.Voucher = NewVoucherService(repos.VoucherRepo, cfg.BalanceEpsilon)
	container.Opening = NewOpeningService(repos.OpeningRepo)
	container.ClosingStock = NewClosingStockService(repos.ClosingStockRepo)
	container.Diagnostics = NewDiagnosticsService(repos.DiagnosticsRepo, container.Master, cfg.BalanceEpsilon)

	// The loader drives the services above
	container.Sync = NewSyncService(container, locker, WithMaxParallelTenants(cfg.MaxParallelTenants))

	return container
}
