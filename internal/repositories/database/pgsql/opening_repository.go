package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxOpeningRepository stores opening balances and allocations.
type PgxOpeningRepository struct {
	BaseRepository
}

func newPgxOpeningRepository(pool *pgxpool.Pool) portsrepo.OpeningRepositoryFacade {
	return &PgxOpeningRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OpeningRepositoryFacade = (*PgxOpeningRepository)(nil)

// ReplaceOpeningBalances zeroes every opening balance of the tenant, applies
// the snapshot, swaps the bill and batch allocations and records the as-of
// date. Nothing is kept if any step fails.
func (r *PgxOpeningRepository) ReplaceOpeningBalances(ctx context.Context, tenant domain.Tenant, snapshot domain.OpeningSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// 1. Reset
	resets := []string{
		`UPDATE mst_ledger SET opening_balance = 0 WHERE user_id = $1 AND company_name = $2`,
		`UPDATE mst_stock_item SET opening_balance = 0, opening_rate = 0, opening_value = 0 WHERE user_id = $1 AND company_name = $2`,
		`DELETE FROM mst_opening_bill_allocation WHERE user_id = $1 AND company_name = $2`,
		`DELETE FROM mst_opening_batch_allocation WHERE user_id = $1 AND company_name = $2`,
	}
	for _, stmt := range resets {
		if _, err := tx.Exec(ctx, stmt, tenantArgs(tenant)...); err != nil {
			return apperrors.NewStorageError("reset opening balances", err)
		}
	}

	// 2. Balances by name
	for _, l := range snapshot.Ledgers {
		tag, err := tx.Exec(ctx,
			`UPDATE mst_ledger SET opening_balance = $3 WHERE user_id = $1 AND company_name = $2 AND name = $4`,
			tenantArgs(tenant, l.Amount, l.Ledger)...)
		if err != nil {
			return apperrors.NewStorageError("set ledger opening balance", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewValidationError(domain.TableLedger, "", "name", "unknown ledger "+l.Ledger)
		}
	}
	for _, s := range snapshot.StockItems {
		tag, err := tx.Exec(ctx,
			`UPDATE mst_stock_item SET opening_balance = $3, opening_rate = $4, opening_value = $5
			WHERE user_id = $1 AND company_name = $2 AND name = $6`,
			tenantArgs(tenant, s.Quantity, s.Rate, s.Value, s.Item)...)
		if err != nil {
			return apperrors.NewStorageError("set stock item opening balance", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewValidationError(domain.TableStockItem, "", "name", "unknown stock item "+s.Item)
		}
	}

	// 3. Allocations
	allocations := &pgx.Batch{}
	bills := domain.MustTable(domain.TableOpeningBillAllocation)
	for _, b := range snapshot.Bills {
		allocations.Queue(insertStatement(bills), tenantArgs(tenant, b.Values()...)...)
	}
	batches := domain.MustTable(domain.TableOpeningBatchAllocation)
	for _, b := range snapshot.Batches {
		allocations.Queue(insertStatement(batches), tenantArgs(tenant, b.Values()...)...)
	}

	// 4. As-of date
	allocations.Queue(`
		INSERT INTO config (user_id, company_name, name, value) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_name, name) DO UPDATE SET value = EXCLUDED.value`,
		tenantArgs(tenant, domain.ConfigOpeningBalanceDate, snapshot.AsOf.String())...)

	br := tx.SendBatch(ctx, allocations)
	if err := br.Close(); err != nil {
		return apperrors.NewStorageError("write opening allocations", err)
	}

	return r.Commit(ctx, tx)
}

// FindOpeningDate reads the as-of date of the stored snapshot.
func (r *PgxOpeningRepository) FindOpeningDate(ctx context.Context, tenant domain.Tenant) (domain.Date, error) {
	var value string
	err := r.Pool.QueryRow(ctx,
		`SELECT value FROM config WHERE user_id = $1 AND company_name = $2 AND name = $3`,
		tenantArgs(tenant, domain.ConfigOpeningBalanceDate)...).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Date{}, apperrors.NewNotFoundError("no opening snapshot for " + tenant.String())
		}
		return domain.Date{}, apperrors.NewStorageError("find opening date", err)
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, apperrors.NewStorageError("parse opening date", err)
	}
	return d, nil
}
