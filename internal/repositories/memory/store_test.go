package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *Store
	tenant domain.Tenant
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStore()
	s.tenant = domain.Tenant{UserID: "u1", CompanyName: "Acme Traders"}
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) upsert(kind domain.MasterKind, guid string, fields domain.Fields) bool {
	fields["guid"] = guid
	values, err := domain.MustTable(kind.Table()).Normalize(guid, fields)
	s.Require().NoError(err)
	inserted, err := s.store.UpsertMaster(s.ctx, s.tenant, kind, values)
	s.Require().NoError(err)
	return inserted
}

func (s *StoreTestSuite) insertRate(kind domain.RateKind, item string, date domain.Date, rate string, policy domain.DuplicatePolicy) error {
	fact := domain.RateFact{Kind: kind, Item: item, Date: date, Rate: decimal.RequireFromString(rate)}
	_, values, err := fact.Row()
	s.Require().NoError(err)
	return s.store.InsertRate(s.ctx, s.tenant, kind, item, date, values, policy)
}

func (s *StoreTestSuite) TestUpsertMaster_InsertThenReplace() {
	s.True(s.upsert(domain.KindLedger, "L1", domain.Fields{"name": "Cash", "parent": "Cash-in-Hand"}))
	s.False(s.upsert(domain.KindLedger, "L1", domain.Fields{"name": "Cash Account", "parent": "Cash-in-Hand"}))

	rows := s.store.Rows(s.tenant, domain.TableLedger)
	s.Require().Len(rows, 1)
	s.Equal("Cash Account", domain.MustTable(domain.TableLedger).GetString(rows[0], "name"))
}

func (s *StoreTestSuite) TestTenantsAreIsolated() {
	s.upsert(domain.KindGroup, "G1", domain.Fields{"name": "Primary Assets"})
	other := domain.Tenant{UserID: "u1", CompanyName: "Other Co"}

	nodes, err := s.store.ListMasterNodes(s.ctx, other)
	s.NoError(err)
	s.Empty(nodes)

	nodes, err = s.store.ListMasterNodes(s.ctx, s.tenant)
	s.NoError(err)
	s.Equal([]domain.MasterNode{{Kind: domain.KindGroup, GUID: "G1", Name: "Primary Assets"}}, nodes)
}

func (s *StoreTestSuite) TestEffectiveRate_PicksLatestNotAfter() {
	s.NoError(s.insertRate(domain.RateGST, "Widget", domain.NewDate(2023, 4, 1), "12", domain.DuplicateKeepLast))
	s.NoError(s.insertRate(domain.RateGST, "Widget", domain.NewDate(2024, 4, 1), "18", domain.DuplicateKeepLast))

	cases := []struct {
		asOf domain.Date
		want string
	}{
		{domain.NewDate(2023, 4, 1), "12"},
		{domain.NewDate(2023, 12, 31), "12"},
		{domain.NewDate(2024, 4, 1), "18"},
		{domain.NewDate(2025, 1, 1), "18"},
	}
	for _, tc := range cases {
		fact, err := s.store.FindEffectiveRate(s.ctx, s.tenant, domain.RateGST, "Widget", tc.asOf)
		s.Require().NoError(err, tc.asOf.String())
		s.True(decimal.RequireFromString(tc.want).Equal(fact.Rate), "as of %s got %s", tc.asOf, fact.Rate)
	}

	_, err := s.store.FindEffectiveRate(s.ctx, s.tenant, domain.RateGST, "Widget", domain.NewDate(2023, 3, 31))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestInsertRate_DuplicatePolicies() {
	date := domain.NewDate(2024, 1, 1)
	s.NoError(s.insertRate(domain.RateStandardCost, "Widget", date, "10", domain.DuplicateKeepLast))
	s.NoError(s.insertRate(domain.RateStandardCost, "Widget", date, "11", domain.DuplicateKeepLast))
	s.Len(s.store.Rows(s.tenant, domain.TableStandardCost), 1)

	fact, err := s.store.FindEffectiveRate(s.ctx, s.tenant, domain.RateStandardCost, "Widget", date)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(11).Equal(fact.Rate))

	err = s.insertRate(domain.RateStandardCost, "Widget", date, "12", domain.DuplicateReject)
	var dup *apperrors.DuplicateKeyError
	s.Require().ErrorAs(err, &dup)
	s.Equal(domain.TableStandardCost, dup.Table)
	s.Len(s.store.Rows(s.tenant, domain.TableStandardCost), 1)
}

func (s *StoreTestSuite) voucher(guid string, amounts ...string) domain.VoucherBatch {
	b := domain.VoucherBatch{Header: domain.Voucher{
		GUID: guid, Date: domain.NewDate(2024, 5, 2), VoucherType: "Journal",
		PartyName: "Cash", PlaceOfSupply: "Karnataka", IsAccountingVoucher: true,
	}}
	for _, a := range amounts {
		b.Accounting = append(b.Accounting, domain.AccountingLeg{Ledger: "Cash", Amount: decimal.RequireFromString(a)})
	}
	s.Require().NoError(b.BindLegs())
	return b
}

func (s *StoreTestSuite) TestReplaceVoucher_SwapsLegs() {
	inserted, err := s.store.ReplaceVoucher(s.ctx, s.tenant, s.voucher("V1", "-100", "60", "40"))
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.store.ReplaceVoucher(s.ctx, s.tenant, s.voucher("V1", "-100", "100"))
	s.Require().NoError(err)
	s.False(inserted)

	counts, err := s.store.CountLegs(s.ctx, s.tenant, "V1")
	s.NoError(err)
	s.Equal(map[string]int{domain.TableAccounting: 2}, counts)
	s.Len(s.store.Rows(s.tenant, domain.TableVoucher), 1)
}

func (s *StoreTestSuite) TestOpeningBalances_UnknownNameLeavesStoreUntouched() {
	s.upsert(domain.KindLedger, "L1", domain.Fields{"name": "Cash"})
	s.Require().NoError(s.store.ReplaceOpeningBalances(s.ctx, s.tenant, domain.OpeningSnapshot{
		AsOf:    domain.NewDate(2024, 4, 1),
		Ledgers: []domain.LedgerOpening{{Ledger: "Cash", Amount: decimal.NewFromInt(-500)}},
	}))

	err := s.store.ReplaceOpeningBalances(s.ctx, s.tenant, domain.OpeningSnapshot{
		AsOf:    domain.NewDate(2025, 4, 1),
		Ledgers: []domain.LedgerOpening{{Ledger: "Bank", Amount: decimal.NewFromInt(10)}},
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	ledger := domain.MustTable(domain.TableLedger)
	row := s.store.Rows(s.tenant, domain.TableLedger)[0]
	s.True(decimal.NewFromInt(-500).Equal(ledger.GetDecimal(row, "opening_balance")))

	asOf, err := s.store.FindOpeningDate(s.ctx, s.tenant)
	s.NoError(err)
	s.Equal("2024-04-01", asOf.String())
}

func (s *StoreTestSuite) TestClosingStock_SaveReplacesSlot() {
	day := domain.NewDate(2024, 3, 31)
	s.NoError(s.store.SaveClosingStock(s.ctx, s.tenant, domain.ClosingStock{Ledger: "Stock", Date: day, Value: decimal.NewFromInt(100)}))
	s.NoError(s.store.SaveClosingStock(s.ctx, s.tenant, domain.ClosingStock{Ledger: "Stock", Date: day, Value: decimal.NewFromInt(120)}))

	list, err := s.store.ListClosingStock(s.ctx, s.tenant)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(decimal.NewFromInt(120).Equal(list[0].Value))
}

func (s *StoreTestSuite) TestDiagnostics() {
	s.upsert(domain.KindLedger, "L1", domain.Fields{"name": "Cash"})
	_, err := s.store.ReplaceVoucher(s.ctx, s.tenant, s.voucher("V1", "-100", "100"))
	s.Require().NoError(err)

	// stored behind the service's back
	bad := s.voucher("V2", "-100", "90")
	bad.Accounting[1].Ledger = "Ghost"
	_, err = s.store.ReplaceVoucher(s.ctx, s.tenant, bad)
	s.Require().NoError(err)

	imbalanced, err := s.store.FindImbalancedVouchers(s.ctx, s.tenant, decimal.RequireFromString("0.01"))
	s.NoError(err)
	s.Require().Len(imbalanced, 1)
	s.Equal("V2", imbalanced[0].GUID)
	s.True(decimal.NewFromInt(-10).Equal(imbalanced[0].Sum))

	dangling, err := s.store.FindDanglingReferences(s.ctx, s.tenant)
	s.NoError(err)
	s.Equal([]domain.DanglingReference{{Table: domain.TableAccounting, GUID: "V2", Column: "ledger", Value: "Ghost"}}, dangling)

	orphans, err := s.store.FindOrphanLegs(s.ctx, s.tenant)
	s.NoError(err)
	s.Empty(orphans)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewStore()
	_, err := store.ReplaceVoucher(ctx, domain.Tenant{UserID: "u", CompanyName: "c"}, domain.VoucherBatch{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRowsAreCopies(t *testing.T) {
	store := NewStore()
	tenant := domain.Tenant{UserID: "u", CompanyName: "c"}
	stock := domain.ClosingStock{Ledger: "Stock", Date: domain.DateOf(time.Now()), Value: decimal.NewFromInt(1)}
	require.NoError(t, store.SaveClosingStock(context.Background(), tenant, stock))

	rows := store.Rows(tenant, domain.TableClosingStock)
	rows[0][0] = "mutated"
	assert.Equal(t, "Stock", store.Rows(tenant, domain.TableClosingStock)[0][0])
}
