package domain

import "github.com/shopspring/decimal"

// ClosingStock is the closing stock value posted to a ledger on a date.
type ClosingStock struct {
	Ledger string          `json:"ledger" validate:"required"`
	Date   Date            `json:"date"`
	Value  decimal.Decimal `json:"value"`
}

func (c ClosingStock) Values() []any {
	return []any{c.Ledger, c.Date.Nullable(), c.Value}
}

// Key identifies the (ledger, stock_date) slot.
func (c ClosingStock) Key() string {
	return c.Ledger + "@" + c.Date.String()
}
