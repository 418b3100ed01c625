package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/SscSPs/tally_ledger_store/internal/core/ports"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker holds tenant locks in Redis so that loaders on different
// hosts exclude each other. Locks are refreshed at half their TTL until
// released.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl}
}

var _ ports.TenantLocker = (*RedisLocker)(nil)

// LockKey is the Redis key guarding tenant.
func LockKey(tenant domain.Tenant) string {
	return fmt.Sprintf("tally-sync:%s:%s", tenant.UserID, tenant.CompanyName)
}

// Acquire obtains the tenant's lock without retrying.
func (l *RedisLocker) Acquire(ctx context.Context, tenant domain.Tenant) (ports.ReleaseFunc, error) {
	key := LockKey(tenant)
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTenantBusy, tenant)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("obtain lock "+key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.refresh(context.WithoutCancel(ctx), lock, stop, done)

	var once sync.Once
	var releaseErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
			if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				releaseErr = apperrors.NewStorageError("release lock "+key, err)
			}
		})
		return releaseErr
	}, nil
}

func (l *RedisLocker) refresh(ctx context.Context, lock *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, l.ttl, nil); err != nil {
				middleware.GetLoggerFromCtx(ctx).Error("Failed to refresh tenant lock",
					slog.String("key", lock.Key()),
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
