package dto

import "github.com/SscSPs/tally_ledger_store/internal/core/domain"

// TenantRequest names the (user, company) pair a request operates on. It
// binds from a JSON body or from query parameters.
type TenantRequest struct {
	UserID      string `json:"user_id" form:"user_id" binding:"required,max=64"`
	CompanyName string `json:"company_name" form:"company_name" binding:"required,max=256"`
}

// Tenant converts the request to the domain tenant.
func (r TenantRequest) Tenant() domain.Tenant {
	return domain.Tenant{UserID: r.UserID, CompanyName: r.CompanyName}
}
