package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Table names of the relational layout.
const (
	TableConfig                      = "config"
	TableGroup                       = "mst_group"
	TableLedger                      = "mst_ledger"
	TableVoucherType                 = "mst_vouchertype"
	TableUOM                         = "mst_uom"
	TableGodown                      = "mst_godown"
	TableStockCategory               = "mst_stock_category"
	TableStockGroup                  = "mst_stock_group"
	TableStockItem                   = "mst_stock_item"
	TableCostCategory                = "mst_cost_category"
	TableCostCentre                  = "mst_cost_centre"
	TableAttendanceType              = "mst_attendance_type"
	TableEmployee                    = "mst_employee"
	TablePayHead                     = "mst_payhead"
	TableGSTEffectiveRate            = "mst_gst_effective_rate"
	TableOpeningBatchAllocation      = "mst_opening_batch_allocation"
	TableOpeningBillAllocation       = "mst_opening_bill_allocation"
	TableClosingStock                = "trn_closingstock_ledger"
	TableStandardCost                = "mst_stockitem_standard_cost"
	TableStandardPrice               = "mst_stockitem_standard_price"
	TableVoucher                     = "trn_voucher"
	TableAccounting                  = "trn_accounting"
	TableInventory                   = "trn_inventory"
	TableCostCentreAlloc             = "trn_cost_centre"
	TableCostCategoryCentre          = "trn_cost_category_centre"
	TableCostInventoryCategoryCentre = "trn_cost_inventory_category_centre"
	TableBill                        = "trn_bill"
	TableBank                        = "trn_bank"
	TableBatch                       = "trn_batch"
	TableInventoryAccounting         = "trn_inventory_accounting"
	TableEmployeeAlloc               = "trn_employee"
	TablePayheadAlloc                = "trn_payhead"
	TableAttendance                  = "trn_attendance"
)

// ColumnType is the storage class of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeDecimal
	TypeDate
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeDate:
		return "date"
	case TypeBool:
		return "boolean"
	}
	return "unknown"
}

// Column describes one non-tenant column. Required columns are NOT NULL
// without a DEFAULT; every other text, number and flag column is
// NOT NULL with a zero DEFAULT, and optional dates are nullable.
type Column struct {
	Name     string
	Type     ColumnType
	Required bool
}

// Table mirrors one table of the migration. Keyed tables have the
// primary key (user_id, company_name, guid).
type Table struct {
	Name    string
	Keyed   bool
	Columns []Column
	index   map[string]int
}

func newTable(name string, keyed bool, cols ...Column) *Table {
	t := &Table{Name: name, Keyed: keyed, Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}

func text(name string) Column { return Column{Name: name, Type: TypeText} }
func required(name string) Column { return Column{Name: name, Type: TypeText, Required: true} }
func integer(name string) Column { return Column{Name: name, Type: TypeInt} }
func number(name string) Column { return Column{Name: name, Type: TypeDecimal} }
func date(name string) Column { return Column{Name: name, Type: TypeDate} }
func mustDate(name string) Column { return Column{Name: name, Type: TypeDate, Required: true} }
func flag(name string) Column { return Column{Name: name, Type: TypeBool} }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames lists the columns in storage order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Get returns the value of column name from a row of t.
func (t *Table) Get(values []any, name string) any {
	i := t.Index(name)
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

// GetString is Get for text columns.
func (t *Table) GetString(values []any, name string) string {
	s, _ := t.Get(values, name).(string)
	return s
}

// GetDecimal is Get for decimal columns.
func (t *Table) GetDecimal(values []any, name string) decimal.Decimal {
	d, _ := t.Get(values, name).(decimal.Decimal)
	return d
}

// Normalize converts loosely typed fields into a row of t, filling defaults.
// Unknown names, unconvertible values and empty required columns are
// rejected with a ValidationError.
func (t *Table) Normalize(guid string, fields Fields) ([]any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return nil, apperrors.NewValidationError(t.Name, guid, name, "unknown column")
		}
	}

	values := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		v, err := col.Convert(fields[col.Name])
		if err != nil {
			return nil, apperrors.NewValidationError(t.Name, guid, col.Name, err.Error())
		}
		values[i] = v
	}
	if err := t.CheckRequired(guid, values); err != nil {
		return nil, err
	}
	return values, nil
}

// CheckRequired rejects rows whose required columns are empty.
func (t *Table) CheckRequired(guid string, values []any) error {
	if len(values) != len(t.Columns) {
		return apperrors.NewValidationError(t.Name, guid, "", fmt.Sprintf("expected %d columns, got %d", len(t.Columns), len(values)))
	}
	for i, col := range t.Columns {
		if !col.Required {
			continue
		}
		switch v := values[i].(type) {
		case nil:
			return apperrors.NewValidationError(t.Name, guid, col.Name, "is required")
		case string:
			if strings.TrimSpace(v) == "" {
				return apperrors.NewValidationError(t.Name, guid, col.Name, "must not be empty")
			}
		case time.Time:
			if v.IsZero() {
				return apperrors.NewValidationError(t.Name, guid, col.Name, "is required")
			}
		}
	}
	return nil
}

// Convert coerces v to the Go type stored for c: string, int64,
// decimal.Decimal, bool, or time.Time (nil for an absent optional date).
func (c Column) Convert(v any) (any, error) {
	if v == nil {
		return c.zero(), nil
	}
	switch c.Type {
	case TypeText:
		return toText(v)
	case TypeInt:
		return toInt(v)
	case TypeDecimal:
		return toDecimal(v)
	case TypeBool:
		return toBool(v)
	case TypeDate:
		d, err := toDate(v)
		if err != nil {
			return nil, err
		}
		return d.Nullable(), nil
	}
	return nil, fmt.Errorf("unsupported column type %s", c.Type)
}

func (c Column) zero() any {
	switch c.Type {
	case TypeText:
		return ""
	case TypeInt:
		return int64(0)
	case TypeDecimal:
		return decimal.Zero
	case TypeBool:
		return false
	}
	return nil
}

func toText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int32, int64, float64:
		return fmt.Sprint(x), nil
	}
	return nil, fmt.Errorf("expected text, got %T", v)
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("expected integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		if strings.TrimSpace(x) == "" {
			return int64(0), nil
		}
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	}
	return nil, fmt.Errorf("expected integer, got %T", v)
}

func toDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		if strings.TrimSpace(x) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(x))
	}
	return nil, fmt.Errorf("expected decimal, got %T", v)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil, fmt.Errorf("expected flag, got %v", x)
		}
		return !d.IsZero(), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true", "1":
			return true, nil
		case "no", "false", "0", "":
			return false, nil
		}
	}
	return nil, fmt.Errorf("expected flag, got %v", v)
}

func toDate(v any) (Date, error) {
	switch x := v.(type) {
	case Date:
		return x, nil
	case time.Time:
		return DateOf(x), nil
	case string:
		return ParseDate(x)
	}
	return Date{}, fmt.Errorf("expected date, got %T", v)
}

var catalog = map[string]*Table{}

func register(t *Table) *Table {
	catalog[t.Name] = t
	return t
}

// LookupTable finds a table of the layout by name.
func LookupTable(name string) (*Table, bool) {
	t, ok := catalog[name]
	return t, ok
}

// MustTable is LookupTable for names known at compile time.
func MustTable(name string) *Table {
	t, ok := catalog[name]
	if !ok {
		panic("unknown table " + name)
	}
	return t
}

// Tables lists every catalogued table sorted by name.
func Tables() []*Table {
	out := make([]*Table, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var (
	groupTable = register(newTable(TableGroup, true,
		required("guid"), required("name"), text("parent"), text("primary_group"),
		flag("is_revenue"), flag("is_deemedpositive"), flag("is_reserved"),
		flag("affects_gross_profit"), integer("sort_position")))

	ledgerTable = register(newTable(TableLedger, true,
		required("guid"), required("name"), text("parent"), text("alias"), text("description"), text("notes"),
		flag("is_revenue"), flag("is_deemedpositive"), number("opening_balance"), number("closing_balance"),
		text("mailing_name"), text("mailing_address"), text("mailing_state"), text("mailing_country"),
		text("mailing_pincode"), text("email"), text("it_pan"), text("gstn"), text("gst_registration_type"),
		text("gst_supply_type"), text("gst_duty_head"), number("tax_rate"),
		text("bank_account_holder"), text("bank_account_number"), text("bank_ifsc"), text("bank_swift"),
		text("bank_name"), text("bank_branch"), integer("bill_credit_period")))

	voucherTypeTable = register(newTable(TableVoucherType, true,
		required("guid"), required("name"), text("parent"), text("numbering_method"),
		flag("is_deemedpositive"), flag("affects_stock")))

	uomTable = register(newTable(TableUOM, true,
		required("guid"), required("name"), text("formalname"), flag("is_simple_unit"),
		text("base_units"), text("additional_units"), number("conversion")))

	godownTable = register(newTable(TableGodown, true,
		required("guid"), required("name"), text("parent"), text("address")))

	stockCategoryTable = register(newTable(TableStockCategory, true,
		required("guid"), required("name"), text("parent")))

	stockGroupTable = register(newTable(TableStockGroup, true,
		required("guid"), required("name"), text("parent")))

	stockItemTable = register(newTable(TableStockItem, true,
		required("guid"), required("name"), text("parent"), text("category"), text("alias"),
		text("description"), text("notes"), text("part_number"), text("uom"), text("alternate_uom"),
		number("conversion"), number("opening_balance"), number("opening_rate"), number("opening_value"),
		number("closing_balance"), number("closing_rate"), number("closing_value"), text("costing_method"),
		text("gst_type_of_supply"), text("gst_hsn_code"), text("gst_hsn_description"), number("gst_rate"),
		text("gst_taxability")))

	costCategoryTable = register(newTable(TableCostCategory, true,
		required("guid"), required("name"), flag("allocate_revenue"), flag("allocate_non_revenue")))

	costCentreTable = register(newTable(TableCostCentre, true,
		required("guid"), required("name"), text("parent"), text("category")))

	attendanceTypeTable = register(newTable(TableAttendanceType, true,
		required("guid"), required("name"), text("parent"), text("uom"), text("attendance_type"),
		text("attendance_period")))

	employeeTable = register(newTable(TableEmployee, true,
		required("guid"), required("name"), text("parent"), text("id_number"), date("date_of_joining"),
		date("date_of_release"), text("designation"), text("function_role"), text("location"), text("gender"),
		date("date_of_birth"), text("blood_group"), text("father_mother_name"), text("spouse_name"),
		text("address"), text("mobile"), text("email"), text("pan"), text("aadhar"), text("uan"),
		text("pf_number"), date("pf_joining_date"), date("pf_relieving_date"), text("pr_account_number")))

	payHeadTable = register(newTable(TablePayHead, true,
		required("guid"), required("name"), text("parent"), text("payslip_name"), text("pay_type"),
		text("income_type"), text("calculation_type"), text("leave_type"), text("calculation_period")))

	gstEffectiveRateTable = register(newTable(TableGSTEffectiveRate, false,
		required("item"), mustDate("applicable_from"), text("hsn_description"), text("hsn_code"),
		number("rate"), flag("is_rcm_applicable"), text("nature_of_transaction"), text("nature_of_goods"),
		text("supply_type"), text("taxability")))

	openingBatchTable = register(newTable(TableOpeningBatchAllocation, false,
		text("name"), required("item"), number("opening_balance"), number("opening_rate"),
		number("opening_value"), text("godown"), date("manufactured_on")))

	openingBillTable = register(newTable(TableOpeningBillAllocation, false,
		required("ledger"), number("opening_balance"), date("bill_date"), text("name"),
		integer("bill_credit_period"), flag("is_advance")))

	closingStockTable = register(newTable(TableClosingStock, false,
		required("ledger"), mustDate("stock_date"), number("stock_value")))

	standardCostTable = register(newTable(TableStandardCost, false,
		required("item"), mustDate("date"), number("rate")))

	standardPriceTable = register(newTable(TableStandardPrice, false,
		required("item"), mustDate("date"), number("rate")))

	voucherTable = register(newTable(TableVoucher, true,
		required("guid"), mustDate("date"), text("voucher_type"), text("voucher_number"),
		text("reference_number"), date("reference_date"), text("narration"), required("party_name"),
		required("place_of_supply"), flag("is_invoice"), flag("is_accounting_voucher"),
		flag("is_inventory_voucher"), flag("is_order_voucher")))

	accountingTable = register(newTable(TableAccounting, false,
		required("guid"), required("ledger"), number("amount"), number("amount_forex"), text("currency")))

	inventoryTable = register(newTable(TableInventory, false,
		required("guid"), required("item"), number("quantity"), number("rate"), number("amount"),
		number("additional_amount"), number("discount_amount"), text("godown"), text("tracking_number"),
		text("order_number"), date("order_duedate")))

	costCentreAllocTable = register(newTable(TableCostCentreAlloc, false,
		required("guid"), text("ledger"), required("costcentre"), number("amount")))

	costCategoryCentreTable = register(newTable(TableCostCategoryCentre, false,
		required("guid"), text("ledger"), required("costcategory"), required("costcentre"), number("amount")))

	costInventoryCategoryCentreTable = register(newTable(TableCostInventoryCategoryCentre, false,
		required("guid"), text("ledger"), required("item"), required("costcategory"), required("costcentre"),
		number("amount")))

	billTable = register(newTable(TableBill, false,
		required("guid"), required("ledger"), text("name"), number("amount"), text("billtype"),
		integer("bill_credit_period")))

	bankTable = register(newTable(TableBank, false,
		required("guid"), required("ledger"), text("transaction_type"), date("instrument_date"),
		text("instrument_number"), text("bank_name"), number("amount"), date("bankers_date")))

	batchTable = register(newTable(TableBatch, false,
		required("guid"), required("item"), text("name"), number("quantity"), number("amount"),
		text("godown"), text("destination_godown"), text("tracking_number")))

	inventoryAccountingTable = register(newTable(TableInventoryAccounting, false,
		required("guid"), required("ledger"), number("amount"), text("additional_allocation_type")))

	employeeAllocTable = register(newTable(TableEmployeeAlloc, false,
		required("guid"), text("category"), required("employee_name"), number("amount"),
		integer("employee_sort_order")))

	payheadAllocTable = register(newTable(TablePayheadAlloc, false,
		required("guid"), text("category"), required("employee_name"), integer("employee_sort_order"),
		required("payhead_name"), integer("payhead_sort_order"), number("amount")))

	attendanceTable = register(newTable(TableAttendance, false,
		required("guid"), required("employee_name"), required("attendancetype_name"), number("time_value"),
		number("type_value")))
)

// LegTables lists the voucher child tables in write order.
var LegTables = []string{
	TableAccounting, TableInventory, TableCostCentreAlloc, TableCostCategoryCentre,
	TableCostInventoryCategoryCentre, TableBill, TableBank, TableBatch, TableInventoryAccounting,
	TableEmployeeAlloc, TablePayheadAlloc, TableAttendance,
}
