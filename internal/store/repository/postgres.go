package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ store.Repository = (*PGRepository)(nil)

func (r *PGRepository) Items(ctx context.Context, q store.Query) ([]model.Item, error) {
	var out []model.Item
	return out, r.selectInto(ctx, &out, itemsTable, q)
}

func (r *PGRepository) ItemBarcodes(ctx context.Context, q store.Query) ([]model.ItemBarcode, error) {
	var out []model.ItemBarcode
	return out, r.selectInto(ctx, &out, barcodesTable, q)
}

func (r *PGRepository) UOMConversions(ctx context.Context, q store.Query) ([]model.UOMConversion, error) {
	var out []model.UOMConversion
	return out, r.selectInto(ctx, &out, uomTable, q)
}

func (r *PGRepository) VariantAttributes(ctx context.Context, q store.Query) ([]model.VariantAttribute, error) {
	var out []model.VariantAttribute
	return out, r.selectInto(ctx, &out, attributesTable, q)
}

func (r *PGRepository) ItemGroups(ctx context.Context, q store.Query) ([]model.ItemGroup, error) {
	var out []model.ItemGroup
	return out, r.selectInto(ctx, &out, itemGroupsTable, q)
}

func (r *PGRepository) ItemPrices(ctx context.Context, q store.Query) ([]model.ItemPrice, error) {
	var out []model.ItemPrice
	return out, r.selectInto(ctx, &out, pricesTable, q)
}

func (r *PGRepository) PriceList(ctx context.Context, name string) (*model.PriceList, error) {
	var pl model.PriceList
	query := `SELECT name, currency, selling, enabled, modified FROM price_lists WHERE name = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &pl, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pl, nil
}

func (r *PGRepository) Company(ctx context.Context, name string) (*model.Company, error) {
	var c model.Company
	query := `SELECT name, default_currency, modified FROM companies WHERE name = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &c, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) ExchangeRates(ctx context.Context, q store.Query) ([]model.CurrencyExchange, error) {
	var out []model.CurrencyExchange
	return out, r.selectInto(ctx, &out, exchangeTable, q)
}

func (r *PGRepository) LedgerEntries(ctx context.Context, q store.Query) ([]model.StockLedgerEntry, error) {
	var out []model.StockLedgerEntry
	return out, r.selectInto(ctx, &out, ledgerTable, q)
}

func (r *PGRepository) Batches(ctx context.Context, q store.Query) ([]model.Batch, error) {
	var out []model.Batch
	return out, r.selectInto(ctx, &out, batchesTable, q)
}

func (r *PGRepository) BatchBalances(ctx context.Context, item, warehouse string) ([]model.BatchBalance, error) {
	var out []model.BatchBalance
	query := `
        SELECT batch_no, SUM(actual_qty) AS qty
        FROM stock_ledger_entries
        WHERE item_code = $1 AND warehouse = $2 AND is_cancelled = FALSE AND batch_no IS NOT NULL AND batch_no <> ''
        GROUP BY batch_no
    `
	if err := r.DB.SelectContext(ctx, &out, query, item, warehouse); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) SerialNos(ctx context.Context, q store.Query) ([]model.SerialNo, error) {
	var out []model.SerialNo
	return out, r.selectInto(ctx, &out, serialsTable, q)
}

func (r *PGRepository) Customers(ctx context.Context, q store.Query) ([]model.Customer, error) {
	var out []model.Customer
	return out, r.selectInto(ctx, &out, customersTable, q)
}

func (r *PGRepository) selectInto(ctx context.Context, dest interface{}, t table, q store.Query) error {
	query, args, err := BuildSelect(t, q)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)
	if err := r.DB.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("select %s: %w", t.name, err)
	}
	return nil
}

// BuildSelect renders q against t as a "?"-placeholder statement. Slice
// arguments for IN predicates are expanded by sqlx.In. Field names are
// checked against the table's column whitelist; values are never inlined.
func BuildSelect(t table, q store.Query) (string, []interface{}, error) {
	for _, f := range q.Fields() {
		if _, ok := t.columns[f]; !ok {
			return "", nil, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, t.name, f)
		}
	}

	var (
		conds []string
		args  []interface{}
	)
	for _, p := range q.Filter.All {
		c, a, err := renderPredicate(p)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, c)
		args = append(args, a...)
	}
	for _, group := range q.Filter.AnyOf {
		ors := make([]string, 0, len(group))
		for _, p := range group {
			c, a, err := renderPredicate(p)
			if err != nil {
				return "", nil, err
			}
			ors = append(ors, c)
			args = append(args, a...)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(t.selectList())
	b.WriteString(" FROM ")
	b.WriteString(t.name)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, o.Field+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", q.Offset)
	}

	query := b.String()
	if hasIn(q) {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return "", nil, err
		}
	}
	return query, args, nil
}

func renderPredicate(p store.Predicate) (string, []interface{}, error) {
	switch p.Op {
	case store.OpEq, store.OpNe, store.OpGt, store.OpGte, store.OpLt, store.OpLte:
		op := string(p.Op)
		if p.Op == store.OpNe {
			op = "<>"
		}
		return p.Field + " " + op + " ?", []interface{}{p.Value}, nil
	case store.OpLike:
		return p.Field + ` ILIKE ? ESCAPE '\'`, []interface{}{p.Value}, nil
	case store.OpIsNull:
		return p.Field + " IS NULL", nil, nil
	case store.OpNotNull:
		return p.Field + " IS NOT NULL", nil, nil
	case store.OpIn:
		vs, ok := p.Value.([]string)
		if !ok {
			return "", nil, fmt.Errorf("%w: IN expects []string for %s", store.ErrInvalidOp, p.Field)
		}
		if len(vs) == 0 {
			return "FALSE", nil, nil
		}
		return p.Field + " IN (?)", []interface{}{vs}, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", store.ErrInvalidOp, p.Op)
	}
}

func hasIn(q store.Query) bool {
	check := func(p store.Predicate) bool {
		vs, ok := p.Value.([]string)
		return p.Op == store.OpIn && ok && len(vs) > 0
	}
	for _, p := range q.Filter.All {
		if check(p) {
			return true
		}
	}
	for _, g := range q.Filter.AnyOf {
		for _, p := range g {
			if check(p) {
				return true
			}
		}
	}
	return false
}
