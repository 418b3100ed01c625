package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxVoucherRepository stores voucher headers and their legs.
type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

// ReplaceVoucher upserts the header, drops every stored leg of the voucher
// and inserts the new legs, all in one transaction.
func (r *PgxVoucherRepository) ReplaceVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (bool, error) {
	guid := batch.Header.GUID
	header := domain.MustTable(domain.TableVoucher)

	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	// 1. Header
	var inserted bool
	if err := tx.QueryRow(ctx, upsertStatement(header), tenantArgs(tenant, batch.Header.Values()...)...).Scan(&inserted); err != nil {
		return false, apperrors.NewStorageError("upsert voucher "+guid, err)
	}

	// 2. Legs: delete the previous set, insert the new one
	legBatch := &pgx.Batch{}
	for _, name := range domain.LegTables {
		legBatch.Queue(deleteByGUIDStatement(domain.MustTable(name)), tenant.UserID, tenant.CompanyName, guid)
	}
	for _, leg := range batch.Legs() {
		legBatch.Queue(insertStatement(domain.MustTable(leg.Table())), tenantArgs(tenant, leg.Values()...)...)
	}

	br := tx.SendBatch(ctx, legBatch)
	if err := br.Close(); err != nil {
		return false, apperrors.NewStorageError("write legs of voucher "+guid, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return inserted, nil
}

var legCountQuery = func() string {
	parts := make([]string, len(domain.LegTables))
	for i, name := range domain.LegTables {
		parts[i] = fmt.Sprintf(
			"SELECT '%s' AS tbl, COUNT(*) AS n FROM %s WHERE user_id = $1 AND company_name = $2 AND guid = $3",
			name, name)
	}
	return strings.Join(parts, "\nUNION ALL\n")
}()

// CountLegs counts the stored legs of one voucher per table. Tables without
// legs are omitted.
func (r *PgxVoucherRepository) CountLegs(ctx context.Context, tenant domain.Tenant, guid string) (map[string]int, error) {
	rows, err := r.Pool.Query(ctx, legCountQuery, tenantArgs(tenant, guid)...)
	if err != nil {
		return nil, apperrors.NewStorageError("count legs of voucher "+guid, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var table string
		var n int64
		if err := rows.Scan(&table, &n); err != nil {
			return nil, apperrors.NewStorageError("scan leg count", err)
		}
		if n > 0 {
			counts[table] = int(n)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("count legs of voucher "+guid, err)
	}
	return counts, nil
}
