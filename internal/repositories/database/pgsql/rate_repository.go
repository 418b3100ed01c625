package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRateRepository stores the GST, standard cost and standard price timelines.
type PgxRateRepository struct {
	BaseRepository
}

func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

func rateTable(kind domain.RateKind) (*domain.Table, error) {
	table, ok := domain.LookupTable(kind.Table())
	if !ok {
		return nil, apperrors.NewValidationError("", "", "kind", fmt.Sprintf("unknown rate kind %q", kind))
	}
	return table, nil
}

// InsertRate appends a fact, applying the duplicate policy for its (item, date).
func (r *PgxRateRepository) InsertRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, date domain.Date, values []any, policy domain.DuplicatePolicy) error {
	table, err := rateTable(kind)
	if err != nil {
		return err
	}
	slot := fmt.Sprintf("user_id = $1 AND company_name = $2 AND item = $3 AND %s = $4", kind.DateColumn())

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	switch policy {
	case domain.DuplicateReject:
		var exists bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table.Name, slot)
		if err := tx.QueryRow(ctx, query, tenantArgs(tenant, item, date.Time)...).Scan(&exists); err != nil {
			return apperrors.NewStorageError("check "+table.Name, err)
		}
		if exists {
			return &apperrors.DuplicateKeyError{Table: table.Name, Key: item + "@" + date.String()}
		}
	default:
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table.Name, slot)
		if _, err := tx.Exec(ctx, query, tenantArgs(tenant, item, date.Time)...); err != nil {
			return apperrors.NewStorageError("replace "+table.Name, err)
		}
	}

	if _, err := tx.Exec(ctx, insertStatement(table), tenantArgs(tenant, values...)...); err != nil {
		return apperrors.NewStorageError("insert "+table.Name, err)
	}
	return r.Commit(ctx, tx)
}

// FindEffectiveRate returns the latest fact dated on or before asOf. Rows
// sharing that date resolve to the one stored last.
func (r *PgxRateRepository) FindEffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, error) {
	table, err := rateTable(kind)
	if err != nil {
		return nil, err
	}
	dateCol := kind.DateColumn()
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND company_name = $2 AND item = $3 AND %s <= $4
		ORDER BY %s DESC, ctid DESC
		LIMIT 1;`,
		selectColumns(table, ""), table.Name, dateCol, dateCol)

	targets := scanTargets(table)
	err = r.Pool.QueryRow(ctx, query, tenantArgs(tenant, item, asOf.Time)...).Scan(targets...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no " + string(kind) + " for " + item + " on or before " + asOf.String())
		}
		return nil, apperrors.NewStorageError("find effective "+table.Name, err)
	}

	fact := domain.RateFactFromRow(kind, scannedValues(targets))
	return &fact, nil
}
