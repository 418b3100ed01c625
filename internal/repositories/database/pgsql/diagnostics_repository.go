package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxDiagnosticsRepository runs the integrity queries in the database.
type PgxDiagnosticsRepository struct {
	BaseRepository
}

func newPgxDiagnosticsRepository(pool *pgxpool.Pool) portsrepo.DiagnosticsRepository {
	return &PgxDiagnosticsRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DiagnosticsRepository = (*PgxDiagnosticsRepository)(nil)

// FindImbalancedVouchers lists stored vouchers whose accounting legs sum
// beyond epsilon.
func (r *PgxDiagnosticsRepository) FindImbalancedVouchers(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.VoucherImbalance, error) {
	query := `
		SELECT v.guid, v.date, v.voucher_type, SUM(a.amount) AS total
		FROM trn_voucher v
		JOIN trn_accounting a
		  ON a.user_id = v.user_id AND a.company_name = v.company_name AND a.guid = v.guid
		WHERE v.user_id = $1 AND v.company_name = $2
		GROUP BY v.guid, v.date, v.voucher_type
		HAVING ABS(SUM(a.amount)) > $3
		ORDER BY v.guid;`

	rows, err := r.Pool.Query(ctx, query, tenantArgs(tenant, epsilon)...)
	if err != nil {
		return nil, apperrors.NewStorageError("find imbalanced vouchers", err)
	}
	defer rows.Close()

	var out []domain.VoucherImbalance
	for rows.Next() {
		var v domain.VoucherImbalance
		var date time.Time
		if err := rows.Scan(&v.GUID, &date, &v.VoucherType, &v.Sum); err != nil {
			return nil, apperrors.NewStorageError("scan imbalanced voucher", err)
		}
		v.Date = domain.DateOf(date)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("find imbalanced vouchers", err)
	}
	return out, nil
}

var orphanLegsQuery = func() string {
	parts := make([]string, len(domain.LegTables))
	for i, name := range domain.LegTables {
		parts[i] = fmt.Sprintf(`SELECT '%s' AS tbl, l.guid, COUNT(*) AS n
		FROM %s l
		WHERE l.user_id = $1 AND l.company_name = $2
		  AND NOT EXISTS (SELECT 1 FROM trn_voucher v
		                  WHERE v.user_id = l.user_id AND v.company_name = l.company_name AND v.guid = l.guid)
		GROUP BY l.guid`, name, name)
	}
	return strings.Join(parts, "\nUNION ALL\n")
}()

// FindOrphanLegs lists leg rows whose guid has no voucher header.
func (r *PgxDiagnosticsRepository) FindOrphanLegs(ctx context.Context, tenant domain.Tenant) ([]domain.OrphanLeg, error) {
	rows, err := r.Pool.Query(ctx, orphanLegsQuery, tenantArgs(tenant)...)
	if err != nil {
		return nil, apperrors.NewStorageError("find orphan legs", err)
	}
	defer rows.Close()

	var out []domain.OrphanLeg
	for rows.Next() {
		var o domain.OrphanLeg
		var n int64
		if err := rows.Scan(&o.Table, &o.GUID, &n); err != nil {
			return nil, apperrors.NewStorageError("scan orphan leg", err)
		}
		o.Rows = int(n)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("find orphan legs", err)
	}
	return out, nil
}

var danglingReferencesQuery = func() string {
	parts := make([]string, len(domain.ReferenceChecks))
	for i, check := range domain.ReferenceChecks {
		parts[i] = fmt.Sprintf(`SELECT DISTINCT '%s' AS tbl, '%s' AS col, l.guid, l.%s AS value
		FROM %s l
		WHERE l.user_id = $1 AND l.company_name = $2 AND l.%s <> ''
		  AND NOT EXISTS (SELECT 1 FROM %s m
		                  WHERE m.user_id = l.user_id AND m.company_name = l.company_name AND m.name = l.%s)`,
			check.Table, check.Column, check.Column, check.Table, check.Column, check.Kind.Table(), check.Column)
	}
	return strings.Join(parts, "\nUNION ALL\n")
}()

// FindDanglingReferences lists legs naming a ledger or stock item that does
// not exist for the tenant.
func (r *PgxDiagnosticsRepository) FindDanglingReferences(ctx context.Context, tenant domain.Tenant) ([]domain.DanglingReference, error) {
	rows, err := r.Pool.Query(ctx, danglingReferencesQuery, tenantArgs(tenant)...)
	if err != nil {
		return nil, apperrors.NewStorageError("find dangling references", err)
	}
	defer rows.Close()

	var out []domain.DanglingReference
	for rows.Next() {
		var d domain.DanglingReference
		if err := rows.Scan(&d.Table, &d.Column, &d.GUID, &d.Value); err != nil {
			return nil, apperrors.NewStorageError("scan dangling reference", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("find dangling references", err)
	}
	return out, nil
}

// FindBridgeMismatches lists inventory vouchers whose inventory-accounting
// rows do not carry the inventory total.
func (r *PgxDiagnosticsRepository) FindBridgeMismatches(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.BridgeMismatch, error) {
	query := `
		WITH inv AS (
			SELECT guid, ABS(SUM(amount)) AS total
			FROM trn_inventory
			WHERE user_id = $1 AND company_name = $2
			GROUP BY guid
		), bridge AS (
			SELECT guid, ABS(SUM(amount)) AS total
			FROM trn_inventory_accounting
			WHERE user_id = $1 AND company_name = $2
			GROUP BY guid
		)
		SELECT inv.guid, inv.total, bridge.total
		FROM inv
		JOIN bridge ON bridge.guid = inv.guid
		JOIN trn_voucher v
		  ON v.user_id = $1 AND v.company_name = $2 AND v.guid = inv.guid AND v.is_inventory_voucher
		WHERE ABS(inv.total - bridge.total) > $3
		ORDER BY inv.guid;`

	rows, err := r.Pool.Query(ctx, query, tenantArgs(tenant, epsilon)...)
	if err != nil {
		return nil, apperrors.NewStorageError("find bridge mismatches", err)
	}
	defer rows.Close()

	var out []domain.BridgeMismatch
	for rows.Next() {
		var b domain.BridgeMismatch
		if err := rows.Scan(&b.GUID, &b.InventoryTotal, &b.BridgeTotal); err != nil {
			return nil, apperrors.NewStorageError("scan bridge mismatch", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("find bridge mismatches", err)
	}
	return out, nil
}
