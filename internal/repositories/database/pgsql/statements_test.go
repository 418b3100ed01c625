package pgsql

import (
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertStatement(t *testing.T) {
	table := domain.MustTable(domain.TableAccounting)
	stmt := insertStatement(table)

	assert.Equal(t,
		"INSERT INTO trn_accounting (user_id, company_name, guid, ledger, amount, amount_forex, currency) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		stmt)
	assert.Equal(t, stmt, insertStatement(table), "cached statement differs")
}

func TestUpsertStatement(t *testing.T) {
	stmt := upsertStatement(domain.MustTable(domain.TableGroup))

	assert.True(t, strings.HasPrefix(stmt, "INSERT INTO mst_group (user_id, company_name, guid, name, parent"))
	assert.Contains(t, stmt, "ON CONFLICT (user_id, company_name, guid) DO UPDATE SET name = EXCLUDED.name")
	assert.NotContains(t, stmt, "guid = EXCLUDED.guid")
	assert.True(t, strings.HasSuffix(stmt, "RETURNING (xmax = 0) AS inserted"))
}

func TestDeleteByGUIDStatement(t *testing.T) {
	assert.Equal(t,
		"DELETE FROM trn_bill WHERE user_id = $1 AND company_name = $2 AND guid = $3",
		deleteByGUIDStatement(domain.MustTable(domain.TableBill)))
}

func TestSelectColumns(t *testing.T) {
	table := domain.MustTable(domain.TableStandardCost)
	assert.Equal(t, "item, date, rate", selectColumns(table, ""))
	assert.Equal(t, "s.item, s.date, s.rate", selectColumns(table, "s"))
	assert.Equal(t, []string{"item", "date", "rate"}, table.ColumnNames(), "aliasing must not touch the catalog")
}

func TestScanTargetsRoundTrip(t *testing.T) {
	table := domain.MustTable(domain.TableOpeningBillAllocation)
	targets := scanTargets(table)
	require.Len(t, targets, len(table.Columns))

	*targets[0].(*string) = "Customer A"
	*targets[1].(*decimal.Decimal) = decimal.RequireFromString("-1500.00")
	*targets[4].(*int64) = 30
	*targets[5].(*bool) = true

	values := scannedValues(targets)
	assert.Equal(t, "Customer A", values[0])
	assert.True(t, decimal.RequireFromString("-1500").Equal(values[1].(decimal.Decimal)))
	assert.Nil(t, values[2], "absent bill_date stays null")
	assert.Equal(t, int64(30), values[4])
	assert.Equal(t, true, values[5])

	billDate := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	*targets[2].(**time.Time) = &billDate
	assert.Equal(t, billDate, scannedValues(targets)[2])
}

func TestTenantArgs(t *testing.T) {
	tenant := domain.Tenant{UserID: "u1", CompanyName: "Acme"}
	assert.Equal(t, []any{"u1", "Acme"}, tenantArgs(tenant))
	assert.Equal(t, []any{"u1", "Acme", "g1", 2}, tenantArgs(tenant, "g1", 2))
}

func TestGeneratedQueriesCoverEveryTable(t *testing.T) {
	for _, name := range domain.LegTables {
		assert.Contains(t, legCountQuery, "FROM "+name+" ")
		assert.Contains(t, orphanLegsQuery, "FROM "+name+" l")
	}
	for _, kind := range domain.MasterKinds() {
		assert.Contains(t, masterNodesQuery, "FROM "+kind.Table()+" ")
	}
	assert.Contains(t, masterNodesQuery, "'' AS parent FROM mst_uom")
	for _, check := range domain.ReferenceChecks {
		assert.Contains(t, danglingReferencesQuery, "FROM "+check.Kind.Table()+" m")
	}
}
