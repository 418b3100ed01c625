package domain

import "github.com/shopspring/decimal"

// ConfigOpeningBalanceDate is the config entry recording the as-of date of
// the current opening snapshot.
const ConfigOpeningBalanceDate = "opening_balance_date"

// LedgerOpening sets a ledger's opening balance by name.
type LedgerOpening struct {
	Ledger string          `json:"ledger" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// StockOpening sets a stock item's opening position by name.
type StockOpening struct {
	Item     string          `json:"item" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Value    decimal.Decimal `json:"value"`
}

// OpeningBill is an outstanding bill carried into the period.
type OpeningBill struct {
	Ledger           string          `json:"ledger" validate:"required"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	BillDate         Date            `json:"bill_date"`
	Name             string          `json:"name"`
	BillCreditPeriod int64           `json:"bill_credit_period"`
	IsAdvance        bool            `json:"is_advance"`
}

func (b OpeningBill) Values() []any {
	return []any{b.Ledger, b.OpeningBalance, b.BillDate.Nullable(), b.Name, b.BillCreditPeriod, b.IsAdvance}
}

// OpeningBatch is an opening stock batch of an item.
type OpeningBatch struct {
	Name           string          `json:"name"`
	Item           string          `json:"item" validate:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	OpeningRate    decimal.Decimal `json:"opening_rate"`
	OpeningValue   decimal.Decimal `json:"opening_value"`
	Godown         string          `json:"godown"`
	ManufacturedOn Date            `json:"manufactured_on"`
}

func (b OpeningBatch) Values() []any {
	return []any{b.Name, b.Item, b.OpeningBalance, b.OpeningRate, b.OpeningValue, b.Godown, b.ManufacturedOn.Nullable()}
}

// OpeningSnapshot replaces every opening balance and allocation of a tenant.
type OpeningSnapshot struct {
	AsOf       Date            `json:"as_of"`
	Ledgers    []LedgerOpening `json:"ledgers" validate:"dive"`
	StockItems []StockOpening  `json:"stock_items" validate:"dive"`
	Bills      []OpeningBill   `json:"bills" validate:"dive"`
	Batches    []OpeningBatch  `json:"batches" validate:"dive"`
}
