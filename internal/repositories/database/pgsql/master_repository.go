package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMasterRepository stores master records of every kind.
type PgxMasterRepository struct {
	BaseRepository
}

func newPgxMasterRepository(pool *pgxpool.Pool) portsrepo.MasterRepositoryFacade {
	return &PgxMasterRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MasterRepositoryFacade = (*PgxMasterRepository)(nil)

// UpsertMaster inserts or replaces a master row keyed by guid.
func (r *PgxMasterRepository) UpsertMaster(ctx context.Context, tenant domain.Tenant, kind domain.MasterKind, values []any) (bool, error) {
	table, ok := domain.LookupTable(kind.Table())
	if !ok {
		return false, apperrors.NewValidationError("", "", "kind", fmt.Sprintf("unknown master kind %q", kind))
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	var inserted bool
	if err := tx.QueryRow(ctx, upsertStatement(table), tenantArgs(tenant, values...)...).Scan(&inserted); err != nil {
		return false, apperrors.NewStorageError("upsert "+table.Name, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return inserted, nil
}

var masterNodesQuery = func() string {
	parts := make([]string, 0, len(domain.MasterKinds()))
	for _, kind := range domain.MasterKinds() {
		parent := "''"
		if _, ok := kind.ParentKind(); ok {
			parent = "parent"
		}
		parts = append(parts, fmt.Sprintf(
			"SELECT '%s' AS kind, guid, name, %s AS parent FROM %s WHERE user_id = $1 AND company_name = $2",
			kind, parent, kind.Table()))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}()

// ListMasterNodes returns the hierarchy projection of every master of the tenant.
func (r *PgxMasterRepository) ListMasterNodes(ctx context.Context, tenant domain.Tenant) ([]domain.MasterNode, error) {
	rows, err := r.Pool.Query(ctx, masterNodesQuery, tenantArgs(tenant)...)
	if err != nil {
		return nil, apperrors.NewStorageError("list master nodes", err)
	}
	defer rows.Close()

	var nodes []domain.MasterNode
	for rows.Next() {
		var node domain.MasterNode
		var kind string
		if err := rows.Scan(&kind, &node.GUID, &node.Name, &node.Parent); err != nil {
			return nil, apperrors.NewStorageError("scan master node", err)
		}
		node.Kind = domain.MasterKind(kind)
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list master nodes", err)
	}
	return nodes, nil
}
