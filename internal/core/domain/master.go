package domain

import "sort"

// MasterKind identifies one of the master tables.
type MasterKind string

const (
	KindGroup          MasterKind = "group"
	KindLedger         MasterKind = "ledger"
	KindVoucherType    MasterKind = "voucher_type"
	KindUOM            MasterKind = "uom"
	KindGodown         MasterKind = "godown"
	KindStockCategory  MasterKind = "stock_category"
	KindStockGroup     MasterKind = "stock_group"
	KindStockItem      MasterKind = "stock_item"
	KindCostCategory   MasterKind = "cost_category"
	KindCostCentre     MasterKind = "cost_centre"
	KindAttendanceType MasterKind = "attendance_type"
	KindEmployee       MasterKind = "employee"
	KindPayHead        MasterKind = "payhead"
)

type masterInfo struct {
	table  string
	parent MasterKind
}

// Masters without a parent column have an empty parent kind.
var masterKinds = map[MasterKind]masterInfo{
	KindGroup:          {TableGroup, KindGroup},
	KindLedger:         {TableLedger, KindGroup},
	KindVoucherType:    {TableVoucherType, KindVoucherType},
	KindUOM:            {TableUOM, ""},
	KindGodown:         {TableGodown, KindGodown},
	KindStockCategory:  {TableStockCategory, KindStockCategory},
	KindStockGroup:     {TableStockGroup, KindStockGroup},
	KindStockItem:      {TableStockItem, KindStockGroup},
	KindCostCategory:   {TableCostCategory, ""},
	KindCostCentre:     {TableCostCentre, KindCostCentre},
	KindAttendanceType: {TableAttendanceType, KindAttendanceType},
	KindEmployee:       {TableEmployee, KindEmployee},
	KindPayHead:        {TablePayHead, KindGroup},
}

// MasterKinds lists every kind in a stable order.
func MasterKinds() []MasterKind {
	kinds := make([]MasterKind, 0, len(masterKinds))
	for k := range masterKinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// MasterKindForTable maps a table name back to its kind.
func MasterKindForTable(table string) (MasterKind, bool) {
	for k, info := range masterKinds {
		if info.table == table {
			return k, true
		}
	}
	return "", false
}

func (k MasterKind) Valid() bool {
	_, ok := masterKinds[k]
	return ok
}

// Table returns the table storing this kind.
func (k MasterKind) Table() string {
	return masterKinds[k].table
}

// ParentKind returns the kind a parent name resolves against. The second
// result is false for kinds without a parent column.
func (k MasterKind) ParentKind() (MasterKind, bool) {
	info, ok := masterKinds[k]
	if !ok || info.parent == "" {
		return "", false
	}
	return info.parent, true
}

// Fields holds the loosely typed column values of a record as decoded
// from JSON. Keys are column names.
type Fields map[string]any

// MasterRecord is one master row to be upserted.
type MasterRecord struct {
	Kind   MasterKind `json:"kind" validate:"required"`
	GUID   string     `json:"guid" validate:"required,max=64"`
	Fields Fields     `json:"fields"`
}

// UpsertResult tells whether an upsert created or replaced the row.
type UpsertResult struct {
	Kind     MasterKind `json:"kind"`
	GUID     string     `json:"guid"`
	Inserted bool       `json:"inserted"`
}

// MasterNode is the hierarchy-relevant projection of a master row.
type MasterNode struct {
	Kind   MasterKind `json:"kind"`
	GUID   string     `json:"guid"`
	Name   string     `json:"name"`
	Parent string     `json:"parent"`
}
