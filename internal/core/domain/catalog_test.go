package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	table := domain.MustTable(domain.TableLedger)

	values, err := table.Normalize("L1", domain.Fields{"guid": "L1", "name": "Cash", "parent": "Cash-in-Hand"})
	require.NoError(t, err)
	require.Len(t, values, len(table.Columns))

	assert.Equal(t, "Cash", table.GetString(values, "name"))
	assert.Equal(t, "", table.GetString(values, "alias"))
	assert.Equal(t, false, table.Get(values, "is_revenue"))
	assert.True(t, table.GetDecimal(values, "opening_balance").IsZero())
	assert.Equal(t, int64(0), table.Get(values, "bill_credit_period"))
}

func TestNormalizeConvertsLooseValues(t *testing.T) {
	table := domain.MustTable(domain.TableStockItem)

	values, err := table.Normalize("S1", domain.Fields{
		"guid":            "S1",
		"name":            "Widget",
		"opening_balance": json.Number("12.5000"),
		"opening_rate":    "4.25",
		"gst_rate":        18.0,
	})
	require.NoError(t, err)
	assert.True(t, table.GetDecimal(values, "opening_balance").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, table.GetDecimal(values, "opening_rate").Equal(decimal.RequireFromString("4.25")))
	assert.True(t, table.GetDecimal(values, "gst_rate").Equal(decimal.NewFromInt(18)))

	employees := domain.MustTable(domain.TableEmployee)
	values, err = employees.Normalize("E1", domain.Fields{"guid": "E1", "name": "Asha", "date_of_joining": "20210401"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC), employees.Get(values, "date_of_joining"))
	assert.Nil(t, employees.Get(values, "date_of_release"))

	groups := domain.MustTable(domain.TableGroup)
	values, err = groups.Normalize("G1", domain.Fields{"guid": "G1", "name": "Sales", "is_revenue": "Yes"})
	require.NoError(t, err)
	assert.Equal(t, true, groups.Get(values, "is_revenue"))
}

func TestConvertFlagFromNumber(t *testing.T) {
	flag := domain.Column{Name: "is_revenue", Type: domain.TypeBool}

	for _, tc := range []struct {
		in   json.Number
		want bool
	}{
		{"0", false},
		{"0.0", false},
		{"0.00", false},
		{"-0", false},
		{"1", true},
		{"0.5", true},
		{"-1", true},
	} {
		got, err := flag.Convert(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := flag.Convert(json.Number("yes"))
	assert.Error(t, err)
}

func TestNormalizeRejects(t *testing.T) {
	table := domain.MustTable(domain.TableLedger)

	tests := []struct {
		name   string
		fields domain.Fields
		field  string
	}{
		{"unknown column", domain.Fields{"guid": "L1", "name": "Cash", "colour": "red"}, "colour"},
		{"empty name", domain.Fields{"guid": "L1", "name": "  "}, "name"},
		{"missing name", domain.Fields{"guid": "L1"}, "name"},
		{"bad decimal", domain.Fields{"guid": "L1", "name": "Cash", "opening_balance": "ten"}, "opening_balance"},
		{"bad flag", domain.Fields{"guid": "L1", "name": "Cash", "is_revenue": "maybe"}, "is_revenue"},
		{"fractional integer", domain.Fields{"guid": "L1", "name": "Cash", "bill_credit_period": 1.5}, "bill_credit_period"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := table.Normalize("L1", tc.fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, domain.TableLedger, verr.Table)
		})
	}
}

func TestEveryMasterKindHasATable(t *testing.T) {
	for _, kind := range domain.MasterKinds() {
		table, ok := domain.LookupTable(kind.Table())
		require.True(t, ok, "kind %s", kind)
		assert.True(t, table.Keyed, "kind %s", kind)
		assert.Equal(t, 0, table.Index("guid"))
		assert.GreaterOrEqual(t, table.Index("name"), 0)

		back, ok := domain.MasterKindForTable(table.Name)
		require.True(t, ok)
		assert.Equal(t, kind, back)

		if parentKind, hasParent := kind.ParentKind(); hasParent {
			assert.True(t, parentKind.Valid())
			assert.GreaterOrEqual(t, table.Index("parent"), 0, "kind %s", kind)
		}
	}
}

func TestLegValuesMatchCatalog(t *testing.T) {
	batch := domain.VoucherBatch{
		Header:                      domain.Voucher{GUID: "V1"},
		Accounting:                  []domain.AccountingLeg{{}},
		Inventory:                   []domain.InventoryLeg{{}},
		CostCentre:                  []domain.CostCentreLeg{{}},
		CostCategoryCentre:          []domain.CostCategoryCentreLeg{{}},
		CostInventoryCategoryCentre: []domain.CostInventoryCategoryCentreLeg{{}},
		Bill:                        []domain.BillLeg{{}},
		Bank:                        []domain.BankLeg{{}},
		Batch:                       []domain.BatchLeg{{}},
		InventoryAccounting:         []domain.InventoryAccountingLeg{{}},
		Employee:                    []domain.EmployeeLeg{{}},
		Payhead:                     []domain.PayheadLeg{{}},
		Attendance:                  []domain.AttendanceLeg{{}},
	}
	legs := batch.Legs()
	require.Len(t, legs, len(domain.LegTables))
	for i, l := range legs {
		assert.Equal(t, domain.LegTables[i], l.Table())
		table := domain.MustTable(l.Table())
		assert.Len(t, l.Values(), len(table.Columns), l.Table())
		assert.Equal(t, 0, table.Index("guid"), l.Table())
	}

	voucherTable := domain.MustTable(domain.TableVoucher)
	assert.Len(t, batch.Header.Values(), len(voucherTable.Columns))
	assert.Len(t, domain.OpeningBill{}.Values(), len(domain.MustTable(domain.TableOpeningBillAllocation).Columns))
	assert.Len(t, domain.OpeningBatch{}.Values(), len(domain.MustTable(domain.TableOpeningBatchAllocation).Columns))
	assert.Len(t, domain.ClosingStock{}.Values(), len(domain.MustTable(domain.TableClosingStock).Columns))
}
