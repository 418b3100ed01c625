package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/SscSPs/tally_ledger_store/internal/core/ports"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// reportOpening is the SyncReport counter of opening snapshots.
const reportOpening = "opening_balances"

// syncService loads producer batches in dependency order.
type syncService struct {
	BaseService
	master      portssvc.MasterSvcFacade
	rate        portssvc.RateSvcFacade
	voucher     portssvc.VoucherSvc
	opening     portssvc.OpeningSvc
	closing     portssvc.ClosingStockSvcFacade
	locker      ports.TenantLocker
	maxParallel int
	now         func() time.Time
}

// SyncServiceOption is a functional option for configuring the sync service
type SyncServiceOption func(*syncService)

// WithMaxParallelTenants bounds how many tenants RunAll loads at once
func WithMaxParallelTenants(n int) SyncServiceOption {
	return func(s *syncService) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// WithClock replaces the clock stamping reports
func WithClock(now func() time.Time) SyncServiceOption {
	return func(s *syncService) {
		s.now = now
	}
}

// NewSyncService wires the loader to the services it drives.
func NewSyncService(container *portssvc.ServiceContainer, locker ports.TenantLocker, options ...SyncServiceOption) portssvc.SyncSvc {
	svc := &syncService{
		master:      container.Master,
		rate:        container.Rate,
		voucher:     container.Voucher,
		opening:     container.Opening,
		closing:     container.ClosingStock,
		locker:      locker,
		maxParallel: 1,
		now:         time.Now,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.SyncSvc = (*syncService)(nil)

// Run loads one batch: masters, hierarchy check, opening snapshot, rates,
// vouchers in (date, guid) order, closing stock. Record failures are
// collected in the report; the run stops early only on a strict hierarchy
// failure, a storage failure of the hierarchy read or cancellation.
// Cancellation is observed between records and phases, never inside a write.
func (s *syncService) Run(ctx context.Context, batch domain.SyncBatch) (*domain.SyncReport, error) {
	tenant := batch.Tenant
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, tenant)
	if err != nil {
		s.LogError(ctx, err, "Failed to acquire tenant lock", tenant.LogAttrs()...)
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.LogError(ctx, err, "Failed to release tenant lock", tenant.LogAttrs()...)
		}
	}()

	report := domain.NewSyncReport(uuid.NewString(), tenant, s.now())
	logger := s.GetLogger(ctx).With(slog.String("run_id", report.RunID)).With(tenant.LogAttrs()...)
	ctx = middleware.WithLogger(ctx, logger)
	finish := func(err error) (*domain.SyncReport, error) {
		report.FinishedAt = s.now()
		return report, err
	}

	logger.Info("Sync run started",
		slog.Int("masters", len(batch.Masters)),
		slog.Int("rates", len(batch.Rates)),
		slog.Int("vouchers", len(batch.Vouchers)),
		slog.Int("closing_stock", len(batch.ClosingStock)))

	// Writes run to completion once started; ctx is only consulted between them.
	writeCtx := context.WithoutCancel(ctx)
	stop := func(phase, next string) bool {
		if ctx.Err() == nil {
			return false
		}
		report.Cancelled = true
		logger.Warn("Sync run cancelled", slog.String("phase", phase), slog.String("next", next))
		return true
	}

	// 1. Masters
	for _, record := range batch.Masters {
		if stop("masters", record.GUID) {
			return finish(ctx.Err())
		}
		table := record.Kind.Table()
		if table == "" {
			table = string(record.Kind)
		}
		result, err := s.master.UpsertMaster(writeCtx, tenant, record)
		if err != nil {
			report.Fail(table, record.GUID, err)
			continue
		}
		report.Record(table, result.Inserted)
	}

	// 2. Hierarchy
	if stop("hierarchy", "") {
		return finish(ctx.Err())
	}
	hierarchy, err := s.master.VerifyHierarchy(writeCtx, tenant)
	report.Hierarchy = hierarchy
	if err != nil {
		s.LogError(ctx, err, "Sync run stopped after master hierarchy check")
		return finish(err)
	}

	// 3. Opening snapshot
	if batch.Opening != nil {
		if stop("opening", "") {
			return finish(ctx.Err())
		}
		if err := s.opening.SetOpeningBalances(writeCtx, tenant, *batch.Opening); err != nil {
			report.Fail(reportOpening, "", err)
		} else {
			report.Record(reportOpening, true)
		}
	}

	// 4. Rates
	for _, fact := range batch.Rates {
		if stop("rates", fact.Key()) {
			return finish(ctx.Err())
		}
		table := fact.Kind.Table()
		if table == "" {
			table = string(fact.Kind)
		}
		if err := s.rate.InsertRate(writeCtx, tenant, fact); err != nil {
			report.Fail(table, fact.Key(), err)
			continue
		}
		report.Record(table, true)
	}

	// 5. Vouchers in (date, guid) order
	vouchers := append([]domain.VoucherBatch(nil), batch.Vouchers...)
	domain.SortVoucherBatches(vouchers)
	for _, vb := range vouchers {
		if stop("vouchers", vb.Header.GUID) {
			return finish(ctx.Err())
		}
		result, err := s.voucher.CommitVoucher(writeCtx, tenant, vb)
		if err != nil {
			report.Fail(domain.TableVoucher, vb.Header.GUID, err)
			continue
		}
		report.Record(domain.TableVoucher, result.Inserted)
		for table, n := range result.Legs {
			for range n {
				report.Record(table, true)
			}
		}
	}

	// 6. Closing stock
	if len(batch.ClosingStock) > 0 {
		if stop("closing_stock", "") {
			return finish(ctx.Err())
		}
		if err := s.closing.ReplaceClosingStock(writeCtx, tenant, batch.ClosingStock); err != nil {
			report.Fail(domain.TableClosingStock, "", err)
		} else {
			for range batch.ClosingStock {
				report.Record(domain.TableClosingStock, true)
			}
		}
	}

	logger.Info("Sync run finished",
		slog.Int("failed_records", report.Failed()),
		slog.Bool("hierarchy_clean", hierarchy.Clean()))
	return finish(nil)
}

// RunAll loads distinct tenants in parallel. Batches naming the same tenant
// twice are rejected before anything is written. Reports are returned in
// batch order; per-tenant errors are joined.
func (s *syncService) RunAll(ctx context.Context, batches []domain.SyncBatch) ([]*domain.SyncReport, error) {
	seen := make(map[string]bool, len(batches))
	for _, b := range batches {
		if err := s.ValidateTenant(b.Tenant); err != nil {
			return nil, err
		}
		if seen[b.Tenant.Key()] {
			return nil, apperrors.NewValidationError("", "", "tenant", "more than one batch for tenant "+b.Tenant.String())
		}
		seen[b.Tenant.Key()] = true
	}

	reports := make([]*domain.SyncReport, len(batches))
	errs := make([]error, len(batches))

	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, b := range batches {
		g.Go(func() error {
			report, err := s.Run(ctx, b)
			reports[i] = report
			if err != nil {
				errs[i] = fmt.Errorf("tenant %s: %w", b.Tenant, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return reports, errors.Join(errs...)
}
