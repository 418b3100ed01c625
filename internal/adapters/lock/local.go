// Package lock provides the per-tenant sync lock: a Redis-backed locker for
// deployments with several loaders and an in-process one otherwise.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/SscSPs/tally_ledger_store/internal/core/ports"
)

// LocalLocker serializes sync runs inside one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

var _ ports.TenantLocker = (*LocalLocker)(nil)

// Acquire takes the tenant's lock or fails with ErrTenantBusy.
func (l *LocalLocker) Acquire(ctx context.Context, tenant domain.Tenant) (ports.ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := tenant.Key()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTenantBusy, tenant)
	}
	l.held[key] = true

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
