package domain

import (
	"sort"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Voucher is the header row of a transaction.
type Voucher struct {
	GUID                string `json:"guid"`
	Date                Date   `json:"date"`
	VoucherType         string `json:"voucher_type"`
	VoucherNumber       string `json:"voucher_number"`
	ReferenceNumber     string `json:"reference_number"`
	ReferenceDate       Date   `json:"reference_date"`
	Narration           string `json:"narration"`
	PartyName           string `json:"party_name"`
	PlaceOfSupply       string `json:"place_of_supply"`
	IsInvoice           bool   `json:"is_invoice"`
	IsAccountingVoucher bool   `json:"is_accounting_voucher"`
	IsInventoryVoucher  bool   `json:"is_inventory_voucher"`
	IsOrderVoucher      bool   `json:"is_order_voucher"`
}

// Values returns the trn_voucher row.
func (v Voucher) Values() []any {
	return []any{
		v.GUID, v.Date.Nullable(), v.VoucherType, v.VoucherNumber, v.ReferenceNumber,
		v.ReferenceDate.Nullable(), v.Narration, v.PartyName, v.PlaceOfSupply,
		v.IsInvoice, v.IsAccountingVoucher, v.IsInventoryVoucher, v.IsOrderVoucher,
	}
}

// Leg is one child row of a voucher.
type Leg interface {
	Table() string
	LegGUID() string
	Values() []any
}

// LegRef carries the voucher guid a leg belongs to. An empty guid binds
// the leg to the header it arrives with.
type LegRef struct {
	GUID string `json:"guid,omitempty"`
}

func (r LegRef) LegGUID() string { return r.GUID }

func (r *LegRef) legRef() *LegRef { return r }

type boundLeg interface {
	Leg
	legRef() *LegRef
}

type AccountingLeg struct {
	LegRef
	Ledger      string          `json:"ledger"`
	Amount      decimal.Decimal `json:"amount"`
	AmountForex decimal.Decimal `json:"amount_forex"`
	Currency    string          `json:"currency"`
}

func (AccountingLeg) Table() string { return TableAccounting }

func (l AccountingLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.Amount, l.AmountForex, l.Currency}
}

type InventoryLeg struct {
	LegRef
	Item             string          `json:"item"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	Amount           decimal.Decimal `json:"amount"`
	AdditionalAmount decimal.Decimal `json:"additional_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	Godown           string          `json:"godown"`
	TrackingNumber   string          `json:"tracking_number"`
	OrderNumber      string          `json:"order_number"`
	OrderDueDate     Date            `json:"order_duedate"`
}

func (InventoryLeg) Table() string { return TableInventory }

func (l InventoryLeg) Values() []any {
	return []any{
		l.GUID, l.Item, l.Quantity, l.Rate, l.Amount, l.AdditionalAmount, l.DiscountAmount,
		l.Godown, l.TrackingNumber, l.OrderNumber, l.OrderDueDate.Nullable(),
	}
}

type CostCentreLeg struct {
	LegRef
	Ledger     string          `json:"ledger"`
	CostCentre string          `json:"costcentre"`
	Amount     decimal.Decimal `json:"amount"`
}

func (CostCentreLeg) Table() string { return TableCostCentreAlloc }

func (l CostCentreLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.CostCentre, l.Amount}
}

type CostCategoryCentreLeg struct {
	LegRef
	Ledger       string          `json:"ledger"`
	CostCategory string          `json:"costcategory"`
	CostCentre   string          `json:"costcentre"`
	Amount       decimal.Decimal `json:"amount"`
}

func (CostCategoryCentreLeg) Table() string { return TableCostCategoryCentre }

func (l CostCategoryCentreLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.CostCategory, l.CostCentre, l.Amount}
}

type CostInventoryCategoryCentreLeg struct {
	LegRef
	Ledger       string          `json:"ledger"`
	Item         string          `json:"item"`
	CostCategory string          `json:"costcategory"`
	CostCentre   string          `json:"costcentre"`
	Amount       decimal.Decimal `json:"amount"`
}

func (CostInventoryCategoryCentreLeg) Table() string { return TableCostInventoryCategoryCentre }

func (l CostInventoryCategoryCentreLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.Item, l.CostCategory, l.CostCentre, l.Amount}
}

type BillLeg struct {
	LegRef
	Ledger           string          `json:"ledger"`
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"`
	BillType         string          `json:"billtype"`
	BillCreditPeriod int64           `json:"bill_credit_period"`
}

func (BillLeg) Table() string { return TableBill }

func (l BillLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.Name, l.Amount, l.BillType, l.BillCreditPeriod}
}

type BankLeg struct {
	LegRef
	Ledger           string          `json:"ledger"`
	TransactionType  string          `json:"transaction_type"`
	InstrumentDate   Date            `json:"instrument_date"`
	InstrumentNumber string          `json:"instrument_number"`
	BankName         string          `json:"bank_name"`
	Amount           decimal.Decimal `json:"amount"`
	BankersDate      Date            `json:"bankers_date"`
}

func (BankLeg) Table() string { return TableBank }

func (l BankLeg) Values() []any {
	return []any{
		l.GUID, l.Ledger, l.TransactionType, l.InstrumentDate.Nullable(), l.InstrumentNumber,
		l.BankName, l.Amount, l.BankersDate.Nullable(),
	}
}

type BatchLeg struct {
	LegRef
	Item              string          `json:"item"`
	Name              string          `json:"name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Amount            decimal.Decimal `json:"amount"`
	Godown            string          `json:"godown"`
	DestinationGodown string          `json:"destination_godown"`
	TrackingNumber    string          `json:"tracking_number"`
}

func (BatchLeg) Table() string { return TableBatch }

func (l BatchLeg) Values() []any {
	return []any{l.GUID, l.Item, l.Name, l.Quantity, l.Amount, l.Godown, l.DestinationGodown, l.TrackingNumber}
}

// InventoryAccountingLeg bridges inventory amounts to the ledgers they post to.
type InventoryAccountingLeg struct {
	LegRef
	Ledger                   string          `json:"ledger"`
	Amount                   decimal.Decimal `json:"amount"`
	AdditionalAllocationType string          `json:"additional_allocation_type"`
}

func (InventoryAccountingLeg) Table() string { return TableInventoryAccounting }

func (l InventoryAccountingLeg) Values() []any {
	return []any{l.GUID, l.Ledger, l.Amount, l.AdditionalAllocationType}
}

type EmployeeLeg struct {
	LegRef
	Category          string          `json:"category"`
	EmployeeName      string          `json:"employee_name"`
	Amount            decimal.Decimal `json:"amount"`
	EmployeeSortOrder int64           `json:"employee_sort_order"`
}

func (EmployeeLeg) Table() string { return TableEmployeeAlloc }

func (l EmployeeLeg) Values() []any {
	return []any{l.GUID, l.Category, l.EmployeeName, l.Amount, l.EmployeeSortOrder}
}

type PayheadLeg struct {
	LegRef
	Category          string          `json:"category"`
	EmployeeName      string          `json:"employee_name"`
	EmployeeSortOrder int64           `json:"employee_sort_order"`
	PayheadName       string          `json:"payhead_name"`
	PayheadSortOrder  int64           `json:"payhead_sort_order"`
	Amount            decimal.Decimal `json:"amount"`
}

func (PayheadLeg) Table() string { return TablePayheadAlloc }

func (l PayheadLeg) Values() []any {
	return []any{l.GUID, l.Category, l.EmployeeName, l.EmployeeSortOrder, l.PayheadName, l.PayheadSortOrder, l.Amount}
}

type AttendanceLeg struct {
	LegRef
	EmployeeName       string          `json:"employee_name"`
	AttendanceTypeName string          `json:"attendancetype_name"`
	TimeValue          decimal.Decimal `json:"time_value"`
	TypeValue          decimal.Decimal `json:"type_value"`
}

func (AttendanceLeg) Table() string { return TableAttendance }

func (l AttendanceLeg) Values() []any {
	return []any{l.GUID, l.EmployeeName, l.AttendanceTypeName, l.TimeValue, l.TypeValue}
}

// VoucherBatch is a voucher header together with all of its legs. It is
// the unit of commit.
type VoucherBatch struct {
	Header                      Voucher                          `json:"header"`
	Accounting                  []AccountingLeg                  `json:"accounting,omitempty"`
	Inventory                   []InventoryLeg                   `json:"inventory,omitempty"`
	CostCentre                  []CostCentreLeg                  `json:"cost_centre,omitempty"`
	CostCategoryCentre          []CostCategoryCentreLeg          `json:"cost_category_centre,omitempty"`
	CostInventoryCategoryCentre []CostInventoryCategoryCentreLeg `json:"cost_inventory_category_centre,omitempty"`
	Bill                        []BillLeg                        `json:"bill,omitempty"`
	Bank                        []BankLeg                        `json:"bank,omitempty"`
	Batch                       []BatchLeg                       `json:"batch,omitempty"`
	InventoryAccounting         []InventoryAccountingLeg         `json:"inventory_accounting,omitempty"`
	Employee                    []EmployeeLeg                    `json:"employee,omitempty"`
	Payhead                     []PayheadLeg                     `json:"payhead,omitempty"`
	Attendance                  []AttendanceLeg                  `json:"attendance,omitempty"`
}

func pointers[T any, P interface {
	*T
	boundLeg
}](legs []T) []boundLeg {
	out := make([]boundLeg, len(legs))
	for i := range legs {
		out[i] = P(&legs[i])
	}
	return out
}

func (b *VoucherBatch) boundLegs() []boundLeg {
	var out []boundLeg
	out = append(out, pointers[AccountingLeg](b.Accounting)...)
	out = append(out, pointers[InventoryLeg](b.Inventory)...)
	out = append(out, pointers[CostCentreLeg](b.CostCentre)...)
	out = append(out, pointers[CostCategoryCentreLeg](b.CostCategoryCentre)...)
	out = append(out, pointers[CostInventoryCategoryCentreLeg](b.CostInventoryCategoryCentre)...)
	out = append(out, pointers[BillLeg](b.Bill)...)
	out = append(out, pointers[BankLeg](b.Bank)...)
	out = append(out, pointers[BatchLeg](b.Batch)...)
	out = append(out, pointers[InventoryAccountingLeg](b.InventoryAccounting)...)
	out = append(out, pointers[EmployeeLeg](b.Employee)...)
	out = append(out, pointers[PayheadLeg](b.Payhead)...)
	out = append(out, pointers[AttendanceLeg](b.Attendance)...)
	return out
}

// BindLegs stamps the header guid on legs sent without one and rejects legs
// that name a different voucher.
func (b *VoucherBatch) BindLegs() error {
	guid := b.Header.GUID
	for _, leg := range b.boundLegs() {
		ref := leg.legRef()
		switch ref.GUID {
		case "":
			ref.GUID = guid
		case guid:
		default:
			return &apperrors.OrphanLegError{Table: leg.Table(), HeaderGUID: guid, LegGUID: ref.GUID}
		}
	}
	return nil
}

// Legs returns every leg in table write order.
func (b *VoucherBatch) Legs() []Leg {
	bound := b.boundLegs()
	out := make([]Leg, len(bound))
	for i, l := range bound {
		out[i] = l
	}
	return out
}

// LegCounts counts legs per table.
func (b *VoucherBatch) LegCounts() map[string]int {
	counts := make(map[string]int)
	for _, l := range b.boundLegs() {
		counts[l.Table()]++
	}
	return counts
}

// CommitResult describes a committed voucher.
type CommitResult struct {
	GUID     string         `json:"guid"`
	Inserted bool           `json:"inserted"`
	Legs     map[string]int `json:"legs"`
}

// SortVoucherBatches orders batches by (date, guid), the load order.
func SortVoucherBatches(batches []VoucherBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i].Header, batches[j].Header
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.GUID < b.GUID
	})
}
