package repository

import "strings"

// table describes one master table: the columns a Query may reference and
// how each is projected into the model's db tags.
type table struct {
	name    string
	order   []string
	columns map[string]string
}

func newTable(name string, cols ...string) table {
	t := table{name: name, columns: make(map[string]string, len(cols))}
	for _, c := range cols {
		t.order = append(t.order, c)
		t.columns[c] = c
	}
	return t
}

// project overrides the select expression of a column.
func (t table) project(col, expr string) table {
	t.columns[col] = expr + " AS " + col
	return t
}

func (t table) selectList() string {
	parts := make([]string, 0, len(t.order))
	for _, c := range t.order {
		parts = append(parts, t.columns[c])
	}
	return strings.Join(parts, ", ")
}

var (
	itemsTable = newTable("items",
		"name", "item_name", "description", "stock_uom", "item_group", "variant_of", "brand", "image",
		"max_discount", "is_stock_item", "is_sales_item", "is_fixed_asset", "has_variants",
		"has_batch_no", "has_serial_no", "disabled", "modified",
	)
	barcodesTable   = newTable("item_barcodes", "name", "parent", "barcode", "uom", "modified")
	uomTable        = newTable("uom_conversions", "name", "parent", "uom", "conversion_factor", "modified")
	attributesTable = newTable("variant_attributes", "name", "parent", "attribute", "attribute_value", "idx", "modified")
	itemGroupsTable = newTable("item_groups", "name", "parent_item_group", "is_group", "modified")
	pricesTable     = newTable("item_prices",
		"name", "item_code", "price_list", "currency", "price_list_rate", "uom", "customer",
		"valid_from", "valid_upto", "selling", "buying", "modified",
	)
	exchangeTable = newTable("currency_exchanges", "name", "from_currency", "to_currency", "date", "exchange_rate", "modified")
	ledgerTable   = newTable("stock_ledger_entries",
		"name", "item_code", "warehouse", "posting_date", "posting_time", "creation", "actual_qty",
		"qty_after_transaction", "batch_no", "is_cancelled", "modified",
	).project("posting_time", "to_char(posting_time, 'HH24:MI:SS')")
	batchesTable = newTable("batches",
		"name", "item", "batch_qty", "expiry_date", "manufacturing_date", "batch_price", "disabled", "modified",
	)
	serialsTable   = newTable("serial_nos", "name", "item_code", "status", "warehouse", "batch_no", "modified")
	customersTable = newTable("customers",
		"name", "customer_name", "customer_group", "territory", "default_price_list", "mobile_no",
		"email_id", "disabled", "modified",
	)
)
