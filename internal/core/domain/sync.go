package domain

// SyncBatch is everything one producer run hands over for a tenant.
type SyncBatch struct {
	Tenant       Tenant           `json:"tenant"`
	Masters      []MasterRecord   `json:"masters"`
	Opening      *OpeningSnapshot `json:"opening,omitempty"`
	Rates        []RateFact       `json:"rates"`
	Vouchers     []VoucherBatch   `json:"vouchers"`
	ClosingStock []ClosingStock   `json:"closing_stock"`
}
