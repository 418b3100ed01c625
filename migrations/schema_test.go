package migrations

import (
	"regexp"
	"strings"
	"testing"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\n\);`)

func schemaColumns(t *testing.T) map[string]map[string]string {
	raw, err := FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)

	tables := make(map[string]map[string]string)
	for _, m := range createTable.FindAllStringSubmatch(string(raw), -1) {
		cols := make(map[string]string)
		for _, line := range strings.Split(m[2], "\n") {
			line = strings.TrimSuffix(strings.TrimSpace(line), ",")
			if line == "" || strings.HasPrefix(line, "PRIMARY KEY") {
				continue
			}
			name, def, _ := strings.Cut(line, " ")
			cols[name] = def
		}
		tables[m[1]] = cols
	}
	return tables
}

func TestSchemaMirrorsCatalog(t *testing.T) {
	tables := schemaColumns(t)

	for _, table := range domain.Tables() {
		cols, ok := tables[table.Name]
		require.True(t, ok, "table %s missing from migration", table.Name)
		assert.Len(t, cols, len(table.Columns)+2, table.Name)
		assert.Contains(t, cols, "user_id")
		assert.Contains(t, cols, "company_name")

		for _, c := range table.Columns {
			def, ok := cols[c.Name]
			if !assert.True(t, ok, "%s.%s missing", table.Name, c.Name) {
				continue
			}
			switch {
			case c.Required:
				assert.Contains(t, def, "NOT NULL", "%s.%s", table.Name, c.Name)
				assert.NotContains(t, def, "DEFAULT", "%s.%s", table.Name, c.Name)
			case c.Type == domain.TypeDate:
				assert.NotContains(t, def, "NOT NULL", "%s.%s", table.Name, c.Name)
			default:
				assert.Contains(t, def, "NOT NULL DEFAULT", "%s.%s", table.Name, c.Name)
			}
		}
	}
}

func TestKeyedTablesHavePrimaryKey(t *testing.T) {
	raw, err := FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)

	for _, m := range createTable.FindAllStringSubmatch(string(raw), -1) {
		table, ok := domain.LookupTable(m[1])
		if !ok {
			continue
		}
		hasPK := strings.Contains(m[2], "PRIMARY KEY (user_id, company_name, guid)")
		assert.Equal(t, table.Keyed, hasPK, table.Name)
	}
}

func TestDownDropsEveryTable(t *testing.T) {
	raw, err := FS.ReadFile("000001_init_schema.down.sql")
	require.NoError(t, err)
	for _, table := range domain.Tables() {
		assert.Contains(t, string(raw), "DROP TABLE IF EXISTS "+table.Name+";")
	}
	assert.Contains(t, string(raw), "DROP TABLE IF EXISTS config;")
}
