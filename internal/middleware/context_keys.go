package middleware

import (
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is the type of the keys this package stores in Gin and request
// contexts. Using a custom type prevents collisions.
type contextKey string

const (
	loggerKey = contextKey("logger")
	tenantKey = contextKey("tenant")
)

// SetTenant records the tenant a request operates on and adds it to the
// request-scoped logger.
func SetTenant(c *gin.Context, tenant domain.Tenant) {
	c.Set(string(tenantKey), tenant)
	setLogger(c, GetLoggerFromContext(c).With(tenant.LogAttrs()...))
}

// GetTenantFromContext retrieves the tenant recorded by SetTenant.
func GetTenantFromContext(c *gin.Context) (domain.Tenant, bool) {
	val, exists := c.Get(string(tenantKey))
	if !exists {
		return domain.Tenant{}, false
	}
	tenant, ok := val.(domain.Tenant)
	return tenant, ok
}
