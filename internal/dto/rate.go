package dto

import (
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EffectiveRateQuery selects the rate in force for an item on a date.
type EffectiveRateQuery struct {
	TenantRequest
	Kind string `form:"kind" binding:"required,oneof=gst_effective_rate standard_cost standard_price"`
	Item string `form:"item" binding:"required"`
	AsOf string `form:"as_of" binding:"required"`
}

// RateResponse defines the data returned for a rate fact.
type RateResponse struct {
	Kind   string          `json:"kind"`
	Item   string          `json:"item"`
	Date   domain.Date     `json:"date"`
	Rate   decimal.Decimal `json:"rate"`
	Fields domain.Fields   `json:"fields,omitempty"`
}

// ToRateResponse converts a domain.RateFact to RateResponse DTO
func ToRateResponse(f *domain.RateFact) RateResponse {
	return RateResponse{
		Kind:   string(f.Kind),
		Item:   f.Item,
		Date:   f.Date,
		Rate:   f.Rate,
		Fields: f.Fields,
	}
}
