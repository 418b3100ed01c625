package domain

import (
	"sort"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/shopspring/decimal"
)

// VoucherImbalance is a stored voucher whose accounting legs do not net to zero.
type VoucherImbalance struct {
	GUID        string          `json:"guid"`
	Date        Date            `json:"date"`
	VoucherType string          `json:"voucher_type"`
	Sum         decimal.Decimal `json:"sum"`
}

// OrphanLeg counts leg rows whose guid has no voucher header.
type OrphanLeg struct {
	Table string `json:"table"`
	GUID  string `json:"guid"`
	Rows  int    `json:"rows"`
}

// DanglingReference is a leg naming a ledger or stock item that does not exist.
type DanglingReference struct {
	Table  string `json:"table"`
	GUID   string `json:"guid"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// BridgeMismatch is an inventory voucher whose inventory-accounting rows do
// not carry the inventory total.
type BridgeMismatch struct {
	GUID           string          `json:"guid"`
	InventoryTotal decimal.Decimal `json:"inventory_total"`
	BridgeTotal    decimal.Decimal `json:"bridge_total"`
}

// BalanceReport is the outcome of a ledger balance verification.
type BalanceReport struct {
	Imbalanced       []VoucherImbalance  `json:"imbalanced_vouchers"`
	Orphans          []OrphanLeg         `json:"orphan_legs"`
	Dangling         []DanglingReference `json:"dangling_references"`
	BridgeMismatches []BridgeMismatch    `json:"bridge_mismatches"`
}

// Clean reports whether the ledger verified without findings.
func (r *BalanceReport) Clean() bool {
	return r == nil || (len(r.Imbalanced) == 0 && len(r.Orphans) == 0 &&
		len(r.Dangling) == 0 && len(r.BridgeMismatches) == 0)
}

// Sort orders every finding deterministically.
func (r *BalanceReport) Sort() {
	sort.Slice(r.Imbalanced, func(i, j int) bool { return r.Imbalanced[i].GUID < r.Imbalanced[j].GUID })
	sort.Slice(r.Orphans, func(i, j int) bool {
		if r.Orphans[i].Table != r.Orphans[j].Table {
			return r.Orphans[i].Table < r.Orphans[j].Table
		}
		return r.Orphans[i].GUID < r.Orphans[j].GUID
	})
	sort.Slice(r.Dangling, func(i, j int) bool {
		a, b := r.Dangling[i], r.Dangling[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.GUID != b.GUID {
			return a.GUID < b.GUID
		}
		return a.Value < b.Value
	})
	sort.Slice(r.BridgeMismatches, func(i, j int) bool { return r.BridgeMismatches[i].GUID < r.BridgeMismatches[j].GUID })
}

// DiagnosticsReport combines hierarchy and ledger verification for a tenant.
type DiagnosticsReport struct {
	Tenant    Tenant           `json:"tenant"`
	Hierarchy *HierarchyReport `json:"hierarchy"`
	Balance   *BalanceReport   `json:"balance"`
}

// Clean reports whether both verifications passed.
func (r *DiagnosticsReport) Clean() bool {
	return r.Hierarchy.Clean() && r.Balance.Clean()
}

// TableCounts tallies the outcome of writes to one table.
type TableCounts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// RecordError is one rejected record of a sync run.
type RecordError struct {
	Table   string `json:"table"`
	GUID    string `json:"guid"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SyncReport summarises one sync run for one tenant.
type SyncReport struct {
	RunID      string                  `json:"run_id"`
	Tenant     Tenant                  `json:"tenant"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Counts     map[string]*TableCounts `json:"counts"`
	Errors     []RecordError           `json:"errors"`
	Hierarchy  *HierarchyReport        `json:"hierarchy,omitempty"`
	Cancelled  bool                    `json:"cancelled"`
}

// NewSyncReport starts a report.
func NewSyncReport(runID string, tenant Tenant, startedAt time.Time) *SyncReport {
	return &SyncReport{
		RunID:     runID,
		Tenant:    tenant,
		StartedAt: startedAt,
		Counts:    make(map[string]*TableCounts),
	}
}

func (r *SyncReport) counts(table string) *TableCounts {
	c, ok := r.Counts[table]
	if !ok {
		c = &TableCounts{}
		r.Counts[table] = c
	}
	return c
}

// Record counts a successful write.
func (r *SyncReport) Record(table string, inserted bool) {
	if inserted {
		r.counts(table).Inserted++
	} else {
		r.counts(table).Updated++
	}
}

// Fail counts a rejected record and keeps its error.
func (r *SyncReport) Fail(table, guid string, err error) {
	r.counts(table).Failed++
	r.Errors = append(r.Errors, RecordError{
		Table:   table,
		GUID:    guid,
		Kind:    apperrors.Kind(err),
		Message: err.Error(),
	})
}

// Tables lists the tables with counts, sorted.
func (r *SyncReport) Tables() []string {
	tables := make([]string, 0, len(r.Counts))
	for t := range r.Counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// Failed is the total number of rejected records.
func (r *SyncReport) Failed() int {
	n := 0
	for _, c := range r.Counts {
		n += c.Failed
	}
	return n
}

// ReferenceCheck names a leg column whose value must be the name of a master.
type ReferenceCheck struct {
	Table  string
	Column string
	Kind   MasterKind
}

// ReferenceChecks are the leg references verified by the diagnostics.
var ReferenceChecks = []ReferenceCheck{
	{Table: TableAccounting, Column: "ledger", Kind: KindLedger},
	{Table: TableInventoryAccounting, Column: "ledger", Kind: KindLedger},
	{Table: TableInventory, Column: "item", Kind: KindStockItem},
	{Table: TableBatch, Column: "item", Kind: KindStockItem},
}
