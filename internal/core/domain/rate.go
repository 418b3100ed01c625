package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateKind names one of the effective-dated timelines.
type RateKind string

const (
	RateGST           RateKind = "gst_effective_rate"
	RateStandardCost  RateKind = "standard_cost"
	RateStandardPrice RateKind = "standard_price"
)

// DuplicatePolicy decides what happens to a second fact for the same
// (item, date).
type DuplicatePolicy string

const (
	DuplicateKeepLast DuplicatePolicy = "keep_last"
	DuplicateReject   DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy validates a configured policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case DuplicateKeepLast, DuplicateReject:
		return p, nil
	case "":
		return DuplicateKeepLast, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

func (k RateKind) Valid() bool {
	switch k {
	case RateGST, RateStandardCost, RateStandardPrice:
		return true
	}
	return false
}

// Table returns the timeline table for k.
func (k RateKind) Table() string {
	switch k {
	case RateGST:
		return TableGSTEffectiveRate
	case RateStandardCost:
		return TableStandardCost
	case RateStandardPrice:
		return TableStandardPrice
	}
	return ""
}

// DateColumn is the column holding the effective date.
func (k RateKind) DateColumn() string {
	if k == RateGST {
		return "applicable_from"
	}
	return "date"
}

// RateFact is one effective-dated rate for an item. Fields carries the
// remaining columns of the GST table (hsn_code, taxability, ...).
type RateFact struct {
	Kind   RateKind        `json:"kind" validate:"required,oneof=gst_effective_rate standard_cost standard_price"`
	Item   string          `json:"item" validate:"required"`
	Date   Date            `json:"date"`
	Rate   decimal.Decimal `json:"rate"`
	Fields Fields          `json:"fields,omitempty"`
}

// Key identifies the (item, date) slot of the fact.
func (f RateFact) Key() string {
	return f.Item + "@" + f.Date.String()
}

// Row validates f and returns its table and row values.
func (f RateFact) Row() (*Table, []any, error) {
	if !f.Kind.Valid() {
		return nil, nil, apperrors.NewValidationError("", f.Item, "kind", fmt.Sprintf("unknown rate kind %q", f.Kind))
	}
	t := MustTable(f.Kind.Table())
	fields := make(Fields, len(f.Fields)+3)
	for k, v := range f.Fields {
		fields[k] = v
	}
	for _, col := range []string{"item", f.Kind.DateColumn(), "rate"} {
		if _, clash := f.Fields[col]; clash {
			return nil, nil, apperrors.NewValidationError(t.Name, f.Item, col, "must be given at the top level")
		}
	}
	fields["item"] = f.Item
	if !f.Date.IsZero() {
		fields[f.Kind.DateColumn()] = f.Date
	}
	fields["rate"] = f.Rate
	values, err := t.Normalize(f.Item, fields)
	if err != nil {
		return nil, nil, err
	}
	return t, values, nil
}

// RateFactFromRow rebuilds a fact from a stored row of kind's table.
func RateFactFromRow(kind RateKind, values []any) RateFact {
	t := MustTable(kind.Table())
	f := RateFact{
		Kind: kind,
		Item: t.GetString(values, "item"),
		Rate: t.GetDecimal(values, "rate"),
	}
	if d, ok := t.Get(values, kind.DateColumn()).(time.Time); ok {
		f.Date = DateOf(d)
	}
	for i, col := range t.Columns {
		switch col.Name {
		case "item", "rate", kind.DateColumn():
			continue
		}
		if f.Fields == nil {
			f.Fields = Fields{}
		}
		f.Fields[col.Name] = values[i]
	}
	return f
}
