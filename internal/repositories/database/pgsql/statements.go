package pgsql

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Statements are built from the table catalog, never from input, and
// cached per table.
var statementCache sync.Map

func cached(key string, build func() string) string {
	if s, ok := statementCache.Load(key); ok {
		return s.(string)
	}
	s, _ := statementCache.LoadOrStore(key, build())
	return s.(string)
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

// insertStatement inserts one tenant-scoped row of t.
func insertStatement(t *domain.Table) string {
	return cached("insert:"+t.Name, func() string {
		cols := append([]string{"user_id", "company_name"}, t.ColumnNames()...)
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.Name, strings.Join(cols, ", "), placeholders(1, len(cols)))
	})
}

// upsertStatement inserts or fully replaces a keyed row and returns
// whether the row was new.
func upsertStatement(t *domain.Table) string {
	return cached("upsert:"+t.Name, func() string {
		sets := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "guid" {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c.Name, c.Name))
		}
		return insertStatement(t) +
			" ON CONFLICT (user_id, company_name, guid) DO UPDATE SET " + strings.Join(sets, ", ") +
			" RETURNING (xmax = 0) AS inserted"
	})
}

// deleteByGUIDStatement removes every row of t for one voucher guid.
func deleteByGUIDStatement(t *domain.Table) string {
	return cached("delete:"+t.Name, func() string {
		return fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND company_name = $2 AND guid = $3", t.Name)
	})
}

// selectColumns lists the catalog columns of t, optionally qualified.
func selectColumns(t *domain.Table, alias string) string {
	cols := t.ColumnNames()
	if alias != "" {
		for i := range cols {
			cols[i] = alias + "." + cols[i]
		}
	}
	return strings.Join(cols, ", ")
}

// scanTargets allocates one destination per column of t.
func scanTargets(t *domain.Table) []any {
	targets := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		switch c.Type {
		case domain.TypeText:
			targets[i] = new(string)
		case domain.TypeInt:
			targets[i] = new(int64)
		case domain.TypeDecimal:
			targets[i] = new(decimal.Decimal)
		case domain.TypeBool:
			targets[i] = new(bool)
		case domain.TypeDate:
			targets[i] = new(*time.Time)
		}
	}
	return targets
}

// scannedValues dereferences scan targets into a catalog row.
func scannedValues(targets []any) []any {
	values := make([]any, len(targets))
	for i, target := range targets {
		switch v := target.(type) {
		case *string:
			values[i] = *v
		case *int64:
			values[i] = *v
		case *decimal.Decimal:
			values[i] = *v
		case *bool:
			values[i] = *v
		case **time.Time:
			if *v != nil {
				values[i] = **v
			}
		}
	}
	return values
}
