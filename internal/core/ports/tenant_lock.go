package ports

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// ReleaseFunc gives up a tenant lock.
type ReleaseFunc func(ctx context.Context) error

// TenantLocker grants exclusive sync access to a tenant. Acquire fails
// immediately with apperrors.ErrTenantBusy when another run holds the lock.
type TenantLocker interface {
	Acquire(ctx context.Context, tenant domain.Tenant) (ReleaseFunc, error)
}
