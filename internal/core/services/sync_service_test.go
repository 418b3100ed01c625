package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/adapters/lock"
	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/core/services"
	"github.com/SscSPs/tally_ledger_store/internal/platform/config"
	"github.com/SscSPs/tally_ledger_store/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	cfg       *config.Config
	store     *memory.Store
	locker    *lock.LocalLocker
	container *portssvc.ServiceContainer
	tenant    domain.Tenant
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.tenant = domain.Tenant{UserID: "u1", CompanyName: "Acme Traders"}
	suite.cfg = &config.Config{
		BalanceEpsilon:      decimal.RequireFromString("0.01"),
		RateDuplicatePolicy: domain.DuplicateKeepLast,
		HierarchyRootNames:  domain.DefaultRootNames,
		MaxParallelTenants:  2,
	}
	suite.rebuild()
}

// rebuild wires a fresh store and container from suite.cfg.
func (suite *SyncServiceTestSuite) rebuild() {
	repos, store := memory.NewRepositoryProvider()
	suite.store = store
	suite.locker = lock.NewLocalLocker()
	suite.container = services.NewServiceContainer(suite.cfg, repos, suite.locker)
}

func TestSyncServiceSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func masters() []domain.MasterRecord {
	return []domain.MasterRecord{
		{Kind: domain.KindGroup, GUID: "G-CA", Fields: domain.Fields{"name": "Current Assets", "parent": "Primary"}},
		{Kind: domain.KindGroup, GUID: "G-CH", Fields: domain.Fields{"name": "Cash-in-Hand", "parent": "Current Assets"}},
		{Kind: domain.KindGroup, GUID: "G-SA", Fields: domain.Fields{"name": "Sales Accounts", "parent": "Primary"}},
		{Kind: domain.KindLedger, GUID: "L-CASH", Fields: domain.Fields{"name": "Cash", "parent": "Cash-in-Hand"}},
		{Kind: domain.KindLedger, GUID: "L-SALES", Fields: domain.Fields{"name": "Sales", "parent": "Sales Accounts"}},
		{Kind: domain.KindStockItem, GUID: "I-W", Fields: domain.Fields{"name": "Widget", "uom": "Nos"}},
	}
}

func voucher(guid string, date domain.Date, debit, credit string) domain.VoucherBatch {
	return domain.VoucherBatch{
		Header: domain.Voucher{
			GUID:                guid,
			Date:                date,
			VoucherType:         "Sales",
			PartyName:           "Cash",
			PlaceOfSupply:       "Karnataka",
			IsAccountingVoucher: true,
		},
		Accounting: []domain.AccountingLeg{
			{Ledger: "Cash", Amount: dec(debit)},
			{Ledger: "Sales", Amount: dec(credit)},
		},
	}
}

func (suite *SyncServiceTestSuite) batch() domain.SyncBatch {
	return domain.SyncBatch{
		Tenant:  suite.tenant,
		Masters: masters(),
		Opening: &domain.OpeningSnapshot{
			AsOf:       domain.NewDate(2024, 4, 1),
			Ledgers:    []domain.LedgerOpening{{Ledger: "Cash", Amount: dec("-5000")}},
			StockItems: []domain.StockOpening{{Item: "Widget", Quantity: dec("10"), Rate: dec("50"), Value: dec("500")}},
		},
		Rates: []domain.RateFact{
			{Kind: domain.RateGST, Item: "Widget", Date: domain.NewDate(2023, 4, 1), Rate: dec("12")},
			{Kind: domain.RateGST, Item: "Widget", Date: domain.NewDate(2024, 4, 1), Rate: dec("18")},
		},
		Vouchers: []domain.VoucherBatch{
			voucher("V2", domain.NewDate(2024, 4, 2), "-1000", "990"),
			voucher("L1", domain.NewDate(2024, 4, 2), "-1000", "1000"),
		},
		ClosingStock: []domain.ClosingStock{
			{Ledger: "Closing Stock", Date: domain.NewDate(2025, 3, 31), Value: dec("750")},
		},
	}
}

func (suite *SyncServiceTestSuite) TestRun_LoadsEverythingInOrder() {
	report, err := suite.container.Sync.Run(suite.ctx, suite.batch())

	suite.Require().NoError(err)
	suite.NotEmpty(report.RunID)
	suite.False(report.Cancelled)
	suite.True(report.Hierarchy.Clean())
	suite.Equal(3, report.Counts[domain.TableGroup].Inserted)
	suite.Equal(2, report.Counts[domain.TableLedger].Inserted)
	suite.Equal(1, report.Counts["opening_balances"].Inserted)
	suite.Equal(2, report.Counts[domain.TableGSTEffectiveRate].Inserted)
	suite.Equal(&domain.TableCounts{Inserted: 1, Failed: 1}, report.Counts[domain.TableVoucher])
	suite.Equal(2, report.Counts[domain.TableAccounting].Inserted)
	suite.Equal(1, report.Counts[domain.TableClosingStock].Inserted)

	// the imbalanced voucher is reported and leaves no rows behind
	suite.Require().Len(report.Errors, 1)
	suite.Equal(domain.RecordError{
		Table:   domain.TableVoucher,
		GUID:    "V2",
		Kind:    "imbalanced_voucher",
		Message: "voucher V2 is not balanced: accounting legs sum to -10",
	}, report.Errors[0])
	suite.Len(suite.store.Rows(suite.tenant, domain.TableVoucher), 1)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableAccounting), 2)

	asOf, ok := suite.store.Config(suite.tenant, domain.ConfigOpeningBalanceDate)
	suite.True(ok)
	suite.Equal("2024-04-01", asOf)

	fact, found, err := suite.container.Rate.EffectiveRate(suite.ctx, suite.tenant, domain.RateGST, "Widget", domain.NewDate(2024, 3, 31))
	suite.Require().NoError(err)
	suite.True(found)
	suite.True(fact.Rate.Equal(dec("12")))

	balance, err := suite.container.Diagnostics.VerifyLedgerBalance(suite.ctx, suite.tenant)
	suite.Require().NoError(err)
	suite.True(balance.Clean())
}

func (suite *SyncServiceTestSuite) TestRun_IsIdempotent() {
	_, err := suite.container.Sync.Run(suite.ctx, suite.batch())
	suite.Require().NoError(err)

	report, err := suite.container.Sync.Run(suite.ctx, suite.batch())
	suite.Require().NoError(err)

	suite.Equal(&domain.TableCounts{Updated: 3}, report.Counts[domain.TableGroup])
	suite.Equal(&domain.TableCounts{Updated: 1, Failed: 1}, report.Counts[domain.TableVoucher])
	suite.Len(suite.store.Rows(suite.tenant, domain.TableGroup), 3)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableAccounting), 2)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableGSTEffectiveRate), 2)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableClosingStock), 1)
}

func (suite *SyncServiceTestSuite) TestRun_ResyncReplacesLegSet() {
	_, err := suite.container.Sync.Run(suite.ctx, suite.batch())
	suite.Require().NoError(err)

	resync := voucher("L1", domain.NewDate(2024, 4, 2), "-1000", "1000")
	resync.Accounting = append(resync.Accounting, domain.AccountingLeg{Ledger: "Cash", Amount: dec("-5")}, domain.AccountingLeg{Ledger: "Sales", Amount: dec("5")})
	resync.Bill = []domain.BillLeg{{Ledger: "Cash", Name: "INV-1", Amount: dec("1005")}}
	_, err = suite.container.Sync.Run(suite.ctx, domain.SyncBatch{Tenant: suite.tenant, Vouchers: []domain.VoucherBatch{resync}})
	suite.Require().NoError(err)

	suite.Len(suite.store.Rows(suite.tenant, domain.TableAccounting), 4)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableBill), 1)

	// dropping the bill leg removes its row
	_, err = suite.container.Sync.Run(suite.ctx, domain.SyncBatch{Tenant: suite.tenant, Vouchers: []domain.VoucherBatch{voucher("L1", domain.NewDate(2024, 4, 2), "-1000", "1000")}})
	suite.Require().NoError(err)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableAccounting), 2)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableBill))
}

func (suite *SyncServiceTestSuite) TestRun_StrictHierarchyStopsBeforeVouchers() {
	suite.cfg.StrictHierarchy = true
	suite.rebuild()

	batch := suite.batch()
	batch.Masters = append(batch.Masters,
		domain.MasterRecord{Kind: domain.KindGroup, GUID: "G1", Fields: domain.Fields{"name": "G1", "parent": "G2"}},
		domain.MasterRecord{Kind: domain.KindGroup, GUID: "G2", Fields: domain.Fields{"name": "G2", "parent": "G1"}},
	)

	report, err := suite.container.Sync.Run(suite.ctx, batch)

	suite.Require().ErrorIs(err, apperrors.ErrHierarchy)
	suite.Require().NotNil(report)
	suite.Len(report.Hierarchy.Cycles, 1)
	suite.Equal(5, report.Counts[domain.TableGroup].Inserted)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableVoucher))
	_, ok := suite.store.Config(suite.tenant, domain.ConfigOpeningBalanceDate)
	suite.False(ok)
}

func (suite *SyncServiceTestSuite) TestRun_LenientHierarchyContinues() {
	batch := suite.batch()
	batch.Masters = append(batch.Masters,
		domain.MasterRecord{Kind: domain.KindLedger, GUID: "L-X", Fields: domain.Fields{"name": "Orphan", "parent": "Nowhere"}})

	report, err := suite.container.Sync.Run(suite.ctx, batch)

	suite.Require().NoError(err)
	suite.Len(report.Hierarchy.Unresolved, 1)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableVoucher), 1)
}

func (suite *SyncServiceTestSuite) TestRun_RejectPolicyReportsDuplicateRate() {
	suite.cfg.RateDuplicatePolicy = domain.DuplicateReject
	suite.rebuild()

	batch := suite.batch()
	batch.Rates = append(batch.Rates, domain.RateFact{Kind: domain.RateGST, Item: "Widget", Date: domain.NewDate(2024, 4, 1), Rate: dec("28")})

	report, err := suite.container.Sync.Run(suite.ctx, batch)

	suite.Require().NoError(err)
	suite.Equal(&domain.TableCounts{Inserted: 2, Failed: 1}, report.Counts[domain.TableGSTEffectiveRate])
	suite.Equal("duplicate_key", report.Errors[0].Kind)

	fact, _, err := suite.container.Rate.EffectiveRate(suite.ctx, suite.tenant, domain.RateGST, "Widget", domain.NewDate(2024, 5, 1))
	suite.Require().NoError(err)
	suite.True(fact.Rate.Equal(dec("18")))
}

func (suite *SyncServiceTestSuite) TestRun_UnknownOpeningNameFailsSnapshotOnly() {
	batch := suite.batch()
	batch.Opening.Ledgers = append(batch.Opening.Ledgers, domain.LedgerOpening{Ledger: "Ghost", Amount: dec("1")})

	report, err := suite.container.Sync.Run(suite.ctx, batch)

	suite.Require().NoError(err)
	suite.Equal(1, report.Counts["opening_balances"].Failed)
	_, ok := suite.store.Config(suite.tenant, domain.ConfigOpeningBalanceDate)
	suite.False(ok)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableVoucher), 1)
}

func (suite *SyncServiceTestSuite) TestRun_TenantBusy() {
	release, err := suite.locker.Acquire(suite.ctx, suite.tenant)
	suite.Require().NoError(err)

	_, err = suite.container.Sync.Run(suite.ctx, suite.batch())
	suite.ErrorIs(err, apperrors.ErrTenantBusy)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableGroup))

	suite.Require().NoError(release(suite.ctx))
	_, err = suite.container.Sync.Run(suite.ctx, suite.batch())
	suite.NoError(err)
}

// cancellingVoucherSvc cancels the run after a number of commits.
type cancellingVoucherSvc struct {
	portssvc.VoucherSvc
	cancel func()
	after  int
	mu     sync.Mutex
	seen   int
}

func (c *cancellingVoucherSvc) CommitVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (domain.CommitResult, error) {
	result, err := c.VoucherSvc.CommitVoucher(ctx, tenant, batch)
	c.mu.Lock()
	c.seen++
	if c.seen == c.after {
		c.cancel()
	}
	c.mu.Unlock()
	return result, err
}

func (suite *SyncServiceTestSuite) TestRun_CancelledBetweenVouchers() {
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()

	container := *suite.container
	container.Voucher = &cancellingVoucherSvc{VoucherSvc: suite.container.Voucher, cancel: cancel, after: 1}
	loader := services.NewSyncService(&container, suite.locker)

	batch := suite.batch()
	batch.Vouchers = []domain.VoucherBatch{
		voucher("A", domain.NewDate(2024, 4, 1), "-1", "1"),
		voucher("B", domain.NewDate(2024, 4, 2), "-2", "2"),
		voucher("C", domain.NewDate(2024, 4, 3), "-3", "3"),
	}

	report, err := loader.Run(ctx, batch)

	suite.Require().ErrorIs(err, context.Canceled)
	suite.True(report.Cancelled)
	suite.Equal(1, report.Counts[domain.TableVoucher].Inserted)
	rows := suite.store.Rows(suite.tenant, domain.TableVoucher)
	suite.Require().Len(rows, 1)
	suite.Equal("A", rows[0][0])
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableClosingStock))

	// the lock is released after a cancelled run
	release, err := suite.locker.Acquire(suite.ctx, suite.tenant)
	suite.Require().NoError(err)
	suite.NoError(release(suite.ctx))
}

// cancellingMasterSvc cancels the run after a number of upserts and
// remembers whether any upsert saw a cancelled context.
type cancellingMasterSvc struct {
	portssvc.MasterSvcFacade
	cancel      func()
	after       int
	seen        int
	sawCanceled bool
}

func (c *cancellingMasterSvc) UpsertMaster(ctx context.Context, tenant domain.Tenant, record domain.MasterRecord) (domain.UpsertResult, error) {
	if ctx.Err() != nil {
		c.sawCanceled = true
	}
	result, err := c.MasterSvcFacade.UpsertMaster(ctx, tenant, record)
	c.seen++
	if c.seen == c.after {
		c.cancel()
	}
	return result, err
}

func (suite *SyncServiceTestSuite) TestRun_CancelledDuringMasters() {
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()

	masterSvc := &cancellingMasterSvc{MasterSvcFacade: suite.container.Master, cancel: cancel, after: 1}
	container := *suite.container
	container.Master = masterSvc
	loader := services.NewSyncService(&container, suite.locker)

	report, err := loader.Run(ctx, suite.batch())

	suite.Require().ErrorIs(err, context.Canceled)
	suite.True(report.Cancelled)
	suite.False(masterSvc.sawCanceled)
	suite.Empty(report.Errors)
	suite.Nil(report.Hierarchy)
	suite.Equal(&domain.TableCounts{Inserted: 1}, report.Counts[domain.TableGroup])
	suite.Len(suite.store.Rows(suite.tenant, domain.TableGroup), 1)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableLedger))
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableGSTEffectiveRate))
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableVoucher))
	_, ok := suite.store.Config(suite.tenant, domain.ConfigOpeningBalanceDate)
	suite.False(ok)
}

// cancellingRateSvc cancels the run after a number of rate inserts.
type cancellingRateSvc struct {
	portssvc.RateSvcFacade
	cancel      func()
	after       int
	seen        int
	sawCanceled bool
}

func (c *cancellingRateSvc) InsertRate(ctx context.Context, tenant domain.Tenant, fact domain.RateFact) error {
	if ctx.Err() != nil {
		c.sawCanceled = true
	}
	err := c.RateSvcFacade.InsertRate(ctx, tenant, fact)
	c.seen++
	if c.seen == c.after {
		c.cancel()
	}
	return err
}

func (suite *SyncServiceTestSuite) TestRun_CancelledDuringRates() {
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()

	rateSvc := &cancellingRateSvc{RateSvcFacade: suite.container.Rate, cancel: cancel, after: 1}
	container := *suite.container
	container.Rate = rateSvc
	loader := services.NewSyncService(&container, suite.locker)

	report, err := loader.Run(ctx, suite.batch())

	suite.Require().ErrorIs(err, context.Canceled)
	suite.True(report.Cancelled)
	suite.False(rateSvc.sawCanceled)
	suite.Empty(report.Errors)
	suite.Equal(3, report.Counts[domain.TableGroup].Inserted)
	suite.Equal(1, report.Counts["opening_balances"].Inserted)
	suite.Equal(&domain.TableCounts{Inserted: 1}, report.Counts[domain.TableGSTEffectiveRate])
	suite.Len(suite.store.Rows(suite.tenant, domain.TableGSTEffectiveRate), 1)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableVoucher))
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableClosingStock))
	suite.False(report.FinishedAt.IsZero())
}

func (suite *SyncServiceTestSuite) TestRun_StampsReportWithClock() {
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return start.Add(time.Duration(ticks-1) * time.Minute)
	}
	loader := services.NewSyncService(suite.container, suite.locker, services.WithClock(clock))

	report, err := loader.Run(suite.ctx, domain.SyncBatch{Tenant: suite.tenant})

	suite.Require().NoError(err)
	suite.Equal(start, report.StartedAt)
	suite.Equal(start.Add(time.Minute), report.FinishedAt)
}

func (suite *SyncServiceTestSuite) TestRunAll_RejectsDuplicateTenants() {
	batches := []domain.SyncBatch{suite.batch(), suite.batch()}

	reports, err := suite.container.Sync.RunAll(suite.ctx, batches)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(reports)
	suite.Empty(suite.store.Rows(suite.tenant, domain.TableGroup))
}

func (suite *SyncServiceTestSuite) TestRunAll_LoadsTenantsIndependently() {
	other := domain.Tenant{UserID: "u2", CompanyName: "Beta Stores"}
	first := suite.batch()
	second := suite.batch()
	second.Tenant = other
	second.Vouchers = []domain.VoucherBatch{voucher("X1", domain.NewDate(2024, 4, 1), "-7", "7")}

	reports, err := suite.container.Sync.RunAll(suite.ctx, []domain.SyncBatch{first, second})

	suite.Require().NoError(err)
	suite.Require().Len(reports, 2)
	suite.Equal(suite.tenant, reports[0].Tenant)
	suite.Equal(other, reports[1].Tenant)
	suite.Equal("L1", suite.store.Rows(suite.tenant, domain.TableVoucher)[0][0])
	suite.Equal("X1", suite.store.Rows(other, domain.TableVoucher)[0][0])
}

func (suite *SyncServiceTestSuite) TestRunAll_JoinsTenantErrors() {
	suite.cfg.StrictHierarchy = true
	suite.rebuild()

	other := domain.Tenant{UserID: "u2", CompanyName: "Beta Stores"}
	bad := domain.SyncBatch{Tenant: other, Masters: []domain.MasterRecord{
		{Kind: domain.KindLedger, GUID: "L-X", Fields: domain.Fields{"name": "Orphan", "parent": "Nowhere"}},
	}}

	reports, err := suite.container.Sync.RunAll(suite.ctx, []domain.SyncBatch{suite.batch(), bad})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrHierarchy)
	suite.Contains(err.Error(), "tenant u2/Beta Stores")
	suite.Require().Len(reports, 2)
	suite.False(reports[0].Cancelled)
	suite.Len(suite.store.Rows(suite.tenant, domain.TableVoucher), 1)

	var herr *apperrors.HierarchyError
	suite.Require().True(errors.As(err, &herr))
	suite.Equal(1, herr.UnresolvedParents)
}
