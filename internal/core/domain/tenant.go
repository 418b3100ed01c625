package domain

import "log/slog"

// Tenant scopes every stored row. Two companies of the same user never see
// each other's data, and neither do two users with the same company name.
type Tenant struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	CompanyName string `json:"company_name" validate:"required,max=256"`
}

// Key is a map key unique per tenant.
func (t Tenant) Key() string {
	return t.UserID + "\x00" + t.CompanyName
}

func (t Tenant) String() string {
	return t.UserID + "/" + t.CompanyName
}

// LogAttrs returns the attributes every tenant-scoped log line carries.
func (t Tenant) LogAttrs() []any {
	return []any{slog.String("user_id", t.UserID), slog.String("company_name", t.CompanyName)}
}
