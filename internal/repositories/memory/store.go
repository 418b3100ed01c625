// Package memory is an in-process implementation of every repository port.
// It keeps catalog-shaped rows per tenant and backs dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/SscSPs/tally_ledger_store/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type tenantData struct {
	// keyed tables: table -> guid -> row
	keyed map[string]map[string][]any
	// fact tables in insertion order
	facts  map[string][][]any
	config map[string]string
}

func newTenantData() *tenantData {
	return &tenantData{
		keyed:  make(map[string]map[string][]any),
		facts:  make(map[string][][]any),
		config: make(map[string]string),
	}
}

func (d *tenantData) table(name string) map[string][]any {
	rows, ok := d.keyed[name]
	if !ok {
		rows = make(map[string][]any)
		d.keyed[name] = rows
	}
	return rows
}

// Store holds every tenant's rows behind one lock. Each method is atomic.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*tenantData
}

func NewStore() *Store {
	return &Store{tenants: make(map[string]*tenantData)}
}

var (
	_ portsrepo.MasterRepositoryFacade       = (*Store)(nil)
	_ portsrepo.RateRepositoryFacade         = (*Store)(nil)
	_ portsrepo.VoucherRepositoryFacade      = (*Store)(nil)
	_ portsrepo.OpeningRepositoryFacade      = (*Store)(nil)
	_ portsrepo.ClosingStockRepositoryFacade = (*Store)(nil)
	_ portsrepo.DiagnosticsRepository        = (*Store)(nil)
)

// NewRepositoryProvider serves every repository from one fresh store.
func NewRepositoryProvider() (portsrepo.RepositoryProvider, *Store) {
	s := NewStore()
	return portsrepo.RepositoryProvider{
		MasterRepo:       s,
		RateRepo:         s,
		VoucherRepo:      s,
		OpeningRepo:      s,
		ClosingStockRepo: s,
		DiagnosticsRepo:  s,
	}, s
}

// data returns the tenant's rows, creating them when create is set.
// Callers hold the lock.
func (s *Store) data(tenant domain.Tenant, create bool) *tenantData {
	d, ok := s.tenants[tenant.Key()]
	if !ok && create {
		d = newTenantData()
		s.tenants[tenant.Key()] = d
	}
	return d
}

func copyRow(values []any) []any {
	return append([]any(nil), values...)
}

// Rows returns a copy of the stored rows of table, keyed tables ordered by guid.
func (s *Store) Rows(tenant domain.Tenant, table string) [][]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil
	}
	var out [][]any
	if rows, ok := d.keyed[table]; ok {
		guids := make([]string, 0, len(rows))
		for guid := range rows {
			guids = append(guids, guid)
		}
		sort.Strings(guids)
		for _, guid := range guids {
			out = append(out, copyRow(rows[guid]))
		}
		return out
	}
	for _, row := range d.facts[table] {
		out = append(out, copyRow(row))
	}
	return out
}

// Config reads a config entry of the tenant.
func (s *Store) Config(tenant domain.Tenant, name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return "", false
	}
	v, ok := d.config[name]
	return v, ok
}

// UpsertMaster stores or replaces a master row keyed by guid.
func (s *Store) UpsertMaster(ctx context.Context, tenant domain.Tenant, kind domain.MasterKind, values []any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	table, ok := domain.LookupTable(kind.Table())
	if !ok {
		return false, apperrors.NewValidationError("", "", "kind", fmt.Sprintf("unknown master kind %q", kind))
	}
	guid := table.GetString(values, "guid")
	if err := table.CheckRequired(guid, values); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.data(tenant, true).table(table.Name)
	_, exists := rows[guid]
	rows[guid] = copyRow(values)
	return !exists, nil
}

// ListMasterNodes projects every master of the tenant onto (kind, guid, name, parent).
func (s *Store) ListMasterNodes(ctx context.Context, tenant domain.Tenant) ([]domain.MasterNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil, nil
	}

	var nodes []domain.MasterNode
	for _, kind := range domain.MasterKinds() {
		table := domain.MustTable(kind.Table())
		for guid, row := range d.keyed[table.Name] {
			nodes = append(nodes, domain.MasterNode{
				Kind:   kind,
				GUID:   guid,
				Name:   table.GetString(row, "name"),
				Parent: table.GetString(row, "parent"),
			})
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		return nodes[i].GUID < nodes[j].GUID
	})
	return nodes, nil
}

func rowDate(table *domain.Table, row []any, column string) domain.Date {
	if t, ok := table.Get(row, column).(time.Time); ok {
		return domain.DateOf(t)
	}
	return domain.Date{}
}

// InsertRate appends a fact, applying the duplicate policy for its (item, date).
func (s *Store) InsertRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, date domain.Date, values []any, policy domain.DuplicatePolicy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	table, ok := domain.LookupTable(kind.Table())
	if !ok {
		return apperrors.NewValidationError("", "", "kind", fmt.Sprintf("unknown rate kind %q", kind))
	}
	if err := table.CheckRequired(item, values); err != nil {
		return err
	}
	dateCol := kind.DateColumn()

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data(tenant, true)

	kept := make([][]any, 0, len(d.facts[table.Name])+1)
	for _, row := range d.facts[table.Name] {
		if table.GetString(row, "item") == item && rowDate(table, row, dateCol).Equal(date) {
			if policy == domain.DuplicateReject {
				return &apperrors.DuplicateKeyError{Table: table.Name, Key: item + "@" + date.String()}
			}
			continue
		}
		kept = append(kept, row)
	}
	d.facts[table.Name] = append(kept, copyRow(values))
	return nil
}

// FindEffectiveRate returns the latest fact dated on or before asOf. Rows
// sharing that date resolve to the one stored last.
func (s *Store) FindEffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, ok := domain.LookupTable(kind.Table())
	if !ok {
		return nil, apperrors.NewValidationError("", "", "kind", fmt.Sprintf("unknown rate kind %q", kind))
	}
	dateCol := kind.DateColumn()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var best []any
	var bestDate domain.Date
	if d := s.data(tenant, false); d != nil {
		for _, row := range d.facts[table.Name] {
			if table.GetString(row, "item") != item {
				continue
			}
			rd := rowDate(table, row, dateCol)
			if rd.After(asOf) {
				continue
			}
			if best == nil || !rd.Before(bestDate) {
				best, bestDate = row, rd
			}
		}
	}
	if best == nil {
		return nil, apperrors.NewNotFoundError("no " + string(kind) + " for " + item + " on or before " + asOf.String())
	}
	fact := domain.RateFactFromRow(kind, copyRow(best))
	return &fact, nil
}

// ReplaceVoucher upserts the header and swaps every leg of the voucher.
func (s *Store) ReplaceVoucher(ctx context.Context, tenant domain.Tenant, batch domain.VoucherBatch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	guid := batch.Header.GUID

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data(tenant, true)

	headers := d.table(domain.TableVoucher)
	_, exists := headers[guid]
	headers[guid] = batch.Header.Values()

	for _, name := range domain.LegTables {
		rows := d.facts[name]
		kept := rows[:0:0]
		for _, row := range rows {
			// guid is the first column of every leg table
			if row[0] != guid {
				kept = append(kept, row)
			}
		}
		d.facts[name] = kept
	}
	for _, leg := range batch.Legs() {
		d.facts[leg.Table()] = append(d.facts[leg.Table()], leg.Values())
	}
	return !exists, nil
}

// CountLegs counts the stored legs of one voucher per table.
func (s *Store) CountLegs(ctx context.Context, tenant domain.Tenant, guid string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	d := s.data(tenant, false)
	if d == nil {
		return counts, nil
	}
	for _, name := range domain.LegTables {
		for _, row := range d.facts[name] {
			if row[0] == guid {
				counts[name]++
			}
		}
	}
	return counts, nil
}

func masterByName(rows map[string][]any, table *domain.Table) map[string][]string {
	byName := make(map[string][]string, len(rows))
	for guid, row := range rows {
		name := table.GetString(row, "name")
		byName[name] = append(byName[name], guid)
	}
	return byName
}

// ReplaceOpeningBalances swaps the tenant's opening snapshot. Unknown names
// leave the store untouched.
func (s *Store) ReplaceOpeningBalances(ctx context.Context, tenant domain.Tenant, snapshot domain.OpeningSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ledgerTable := domain.MustTable(domain.TableLedger)
	itemTable := domain.MustTable(domain.TableStockItem)

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data(tenant, true)
	ledgers := d.table(domain.TableLedger)
	items := d.table(domain.TableStockItem)

	ledgerNames := masterByName(ledgers, ledgerTable)
	for _, l := range snapshot.Ledgers {
		if _, ok := ledgerNames[l.Ledger]; !ok {
			return apperrors.NewValidationError(domain.TableLedger, "", "name", "unknown ledger "+l.Ledger)
		}
	}
	itemNames := masterByName(items, itemTable)
	for _, si := range snapshot.StockItems {
		if _, ok := itemNames[si.Item]; !ok {
			return apperrors.NewValidationError(domain.TableStockItem, "", "name", "unknown stock item "+si.Item)
		}
	}

	for _, row := range ledgers {
		row[ledgerTable.Index("opening_balance")] = decimal.Zero
	}
	for _, row := range items {
		for _, col := range []string{"opening_balance", "opening_rate", "opening_value"} {
			row[itemTable.Index(col)] = decimal.Zero
		}
	}
	for _, l := range snapshot.Ledgers {
		for _, guid := range ledgerNames[l.Ledger] {
			ledgers[guid][ledgerTable.Index("opening_balance")] = l.Amount
		}
	}
	for _, si := range snapshot.StockItems {
		for _, guid := range itemNames[si.Item] {
			row := items[guid]
			row[itemTable.Index("opening_balance")] = si.Quantity
			row[itemTable.Index("opening_rate")] = si.Rate
			row[itemTable.Index("opening_value")] = si.Value
		}
	}

	bills := make([][]any, 0, len(snapshot.Bills))
	for _, b := range snapshot.Bills {
		bills = append(bills, b.Values())
	}
	d.facts[domain.TableOpeningBillAllocation] = bills
	batches := make([][]any, 0, len(snapshot.Batches))
	for _, b := range snapshot.Batches {
		batches = append(batches, b.Values())
	}
	d.facts[domain.TableOpeningBatchAllocation] = batches
	d.config[domain.ConfigOpeningBalanceDate] = snapshot.AsOf.String()
	return nil
}

// FindOpeningDate reads the as-of date of the stored snapshot.
func (s *Store) FindOpeningDate(ctx context.Context, tenant domain.Tenant) (domain.Date, error) {
	value, ok := s.Config(tenant, domain.ConfigOpeningBalanceDate)
	if !ok {
		return domain.Date{}, apperrors.NewNotFoundError("no opening snapshot for " + tenant.String())
	}
	return domain.ParseDate(value)
}

// SaveClosingStock replaces the value for (ledger, stock_date).
func (s *Store) SaveClosingStock(ctx context.Context, tenant domain.Tenant, stock domain.ClosingStock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	table := domain.MustTable(domain.TableClosingStock)

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data(tenant, true)
	kept := make([][]any, 0, len(d.facts[table.Name])+1)
	for _, row := range d.facts[table.Name] {
		if table.GetString(row, "ledger") == stock.Ledger && rowDate(table, row, "stock_date").Equal(stock.Date) {
			continue
		}
		kept = append(kept, row)
	}
	d.facts[table.Name] = append(kept, stock.Values())
	return nil
}

// ReplaceClosingStock swaps the tenant's whole closing stock set.
func (s *Store) ReplaceClosingStock(ctx context.Context, tenant domain.Tenant, stock []domain.ClosingStock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]any, 0, len(stock))
	for _, st := range stock {
		rows = append(rows, st.Values())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data(tenant, true).facts[domain.TableClosingStock] = rows
	return nil
}

// ListClosingStock returns the tenant's closing stock ordered by ledger and date.
func (s *Store) ListClosingStock(ctx context.Context, tenant domain.Tenant) ([]domain.ClosingStock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table := domain.MustTable(domain.TableClosingStock)
	var out []domain.ClosingStock
	for _, row := range s.Rows(tenant, table.Name) {
		out = append(out, domain.ClosingStock{
			Ledger: table.GetString(row, "ledger"),
			Date:   rowDate(table, row, "stock_date"),
			Value:  table.GetDecimal(row, "stock_value"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ledger != out[j].Ledger {
			return out[i].Ledger < out[j].Ledger
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// legSums adds the amount column of table per voucher guid.
func legSums(d *tenantData, table string) map[string]decimal.Decimal {
	t := domain.MustTable(table)
	sums := make(map[string]decimal.Decimal)
	for _, row := range d.facts[table] {
		guid := t.GetString(row, "guid")
		sums[guid] = sums[guid].Add(t.GetDecimal(row, "amount"))
	}
	return sums
}

// FindImbalancedVouchers lists stored vouchers whose accounting legs sum
// beyond epsilon.
func (s *Store) FindImbalancedVouchers(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.VoucherImbalance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header := domain.MustTable(domain.TableVoucher)

	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil, nil
	}
	var out []domain.VoucherImbalance
	for guid, sum := range legSums(d, domain.TableAccounting) {
		row, ok := d.keyed[domain.TableVoucher][guid]
		if !ok || accounting.WithinEpsilon(sum, epsilon) {
			continue
		}
		out = append(out, domain.VoucherImbalance{
			GUID:        guid,
			Date:        rowDate(header, row, "date"),
			VoucherType: header.GetString(row, "voucher_type"),
			Sum:         sum,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out, nil
}

// FindOrphanLegs lists leg rows whose guid has no voucher header.
func (s *Store) FindOrphanLegs(ctx context.Context, tenant domain.Tenant) ([]domain.OrphanLeg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil, nil
	}
	var out []domain.OrphanLeg
	for _, name := range domain.LegTables {
		counts := make(map[string]int)
		for _, row := range d.facts[name] {
			guid, _ := row[0].(string)
			if _, ok := d.keyed[domain.TableVoucher][guid]; !ok {
				counts[guid]++
			}
		}
		for guid, n := range counts {
			out = append(out, domain.OrphanLeg{Table: name, GUID: guid, Rows: n})
		}
	}
	return out, nil
}

// FindDanglingReferences lists legs naming a ledger or stock item that does
// not exist for the tenant.
func (s *Store) FindDanglingReferences(ctx context.Context, tenant domain.Tenant) ([]domain.DanglingReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil, nil
	}
	var out []domain.DanglingReference
	for _, check := range domain.ReferenceChecks {
		masters := domain.MustTable(check.Kind.Table())
		names := masterByName(d.keyed[masters.Name], masters)
		legs := domain.MustTable(check.Table)
		seen := make(map[string]bool)
		for _, row := range d.facts[check.Table] {
			value := legs.GetString(row, check.Column)
			if value == "" {
				continue
			}
			if _, ok := names[value]; ok {
				continue
			}
			guid := legs.GetString(row, "guid")
			if seen[guid+"\x00"+value] {
				continue
			}
			seen[guid+"\x00"+value] = true
			out = append(out, domain.DanglingReference{Table: check.Table, GUID: guid, Column: check.Column, Value: value})
		}
	}
	return out, nil
}

// FindBridgeMismatches lists inventory vouchers whose inventory-accounting
// rows do not carry the inventory total.
func (s *Store) FindBridgeMismatches(ctx context.Context, tenant domain.Tenant, epsilon decimal.Decimal) ([]domain.BridgeMismatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header := domain.MustTable(domain.TableVoucher)

	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data(tenant, false)
	if d == nil {
		return nil, nil
	}
	bridge := legSums(d, domain.TableInventoryAccounting)
	var out []domain.BridgeMismatch
	for guid, inv := range legSums(d, domain.TableInventory) {
		row, ok := d.keyed[domain.TableVoucher][guid]
		if !ok {
			continue
		}
		if isInv, _ := header.Get(row, "is_inventory_voucher").(bool); !isInv {
			continue
		}
		br, ok := bridge[guid]
		if !ok {
			continue
		}
		if accounting.WithinEpsilon(inv.Abs().Sub(br.Abs()), epsilon) {
			continue
		}
		out = append(out, domain.BridgeMismatch{GUID: guid, InventoryTotal: inv.Abs(), BridgeTotal: br.Abs()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out, nil
}
