package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxClosingStockRepository stores closing stock valuations.
type PgxClosingStockRepository struct {
	BaseRepository
}

func newPgxClosingStockRepository(pool *pgxpool.Pool) portsrepo.ClosingStockRepositoryFacade {
	return &PgxClosingStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClosingStockRepositoryFacade = (*PgxClosingStockRepository)(nil)

// SaveClosingStock replaces the value for (ledger, stock_date).
func (r *PgxClosingStockRepository) SaveClosingStock(ctx context.Context, tenant domain.Tenant, stock domain.ClosingStock) error {
	table := domain.MustTable(domain.TableClosingStock)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM trn_closingstock_ledger WHERE user_id = $1 AND company_name = $2 AND ledger = $3 AND stock_date = $4`,
		tenantArgs(tenant, stock.Ledger, stock.Date.Time)...); err != nil {
		return apperrors.NewStorageError("replace closing stock", err)
	}
	if _, err := tx.Exec(ctx, insertStatement(table), tenantArgs(tenant, stock.Values()...)...); err != nil {
		return apperrors.NewStorageError("insert closing stock", err)
	}
	return r.Commit(ctx, tx)
}

// ReplaceClosingStock swaps the tenant's whole closing stock set.
func (r *PgxClosingStockRepository) ReplaceClosingStock(ctx context.Context, tenant domain.Tenant, stock []domain.ClosingStock) error {
	table := domain.MustTable(domain.TableClosingStock)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM trn_closingstock_ledger WHERE user_id = $1 AND company_name = $2`, tenantArgs(tenant)...)
	for _, s := range stock {
		batch.Queue(insertStatement(table), tenantArgs(tenant, s.Values()...)...)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewStorageError("replace closing stock", err)
	}
	return r.Commit(ctx, tx)
}

// ListClosingStock returns the tenant's closing stock ordered by ledger and date.
func (r *PgxClosingStockRepository) ListClosingStock(ctx context.Context, tenant domain.Tenant) ([]domain.ClosingStock, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT ledger, stock_date, stock_value
		FROM trn_closingstock_ledger
		WHERE user_id = $1 AND company_name = $2
		ORDER BY ledger, stock_date;`, tenantArgs(tenant)...)
	if err != nil {
		return nil, apperrors.NewStorageError("list closing stock", err)
	}
	defer rows.Close()

	var out []domain.ClosingStock
	for rows.Next() {
		var s domain.ClosingStock
		var stockDate time.Time
		if err := rows.Scan(&s.Ledger, &stockDate, &s.Value); err != nil {
			return nil, apperrors.NewStorageError("scan closing stock", err)
		}
		s.Date = domain.DateOf(stockDate)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list closing stock", err)
	}
	return out, nil
}
