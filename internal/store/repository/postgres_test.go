package repository

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

func TestBuildSelect(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	q := store.Where(
		store.Eq("disabled", false),
		store.Gt("modified", since),
		store.In("item_group", "Drinks", "Food"),
	).Or(
		store.Contains("name", "cola"),
		store.Contains("item_name", "cola"),
	).Sort(store.Asc("item_name"), store.Desc("modified")).Page(50, 100)

	query, args, err := BuildSelect(itemsTable, q)
	if err != nil {
		t.Fatalf("BuildSelect: %v", err)
	}

	want := "SELECT " + itemsTable.selectList() + " FROM items" +
		" WHERE disabled = ? AND modified > ? AND item_group IN (?, ?) AND (name ILIKE ? ESCAPE '\\' OR item_name ILIKE ? ESCAPE '\\')" +
		" ORDER BY item_name ASC, modified DESC LIMIT 50 OFFSET 100"
	if query != want {
		t.Errorf("query:\n got %s\nwant %s", query, want)
	}

	wantArgs := []interface{}{false, since, "Drinks", "Food", "%cola%", "%cola%"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args: got %#v, want %#v", args, wantArgs)
	}
}

func TestBuildSelectRejectsUnknownField(t *testing.T) {
	_, _, err := BuildSelect(itemsTable, store.Where(store.Eq("name; DROP TABLE items", "x")))
	if !errors.Is(err, store.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	_, _, err = BuildSelect(itemsTable, store.Query{OrderBy: []store.Order{store.Desc("1=1")}})
	if !errors.Is(err, store.ErrUnknownField) {
		t.Fatalf("order by: expected ErrUnknownField, got %v", err)
	}
}

func TestBuildSelectEmptyIn(t *testing.T) {
	query, args, err := BuildSelect(serialsTable, store.Where(store.In("item_code")))
	if err != nil {
		t.Fatalf("BuildSelect: %v", err)
	}
	if want := "SELECT " + serialsTable.selectList() + " FROM serial_nos WHERE FALSE"; query != want {
		t.Errorf("got %s", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestLedgerProjection(t *testing.T) {
	if got := ledgerTable.columns["posting_time"]; got != "to_char(posting_time, 'HH24:MI:SS') AS posting_time" {
		t.Errorf("posting_time projection: %s", got)
	}
}

// Integration test against a live database. Set POSTGRES_TEST_DSN to run.
func TestPGRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skipf("POSTGRES_TEST_DSN not set")
	}

	db, err := postgres.Open(dsn, nil)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	mustExec(t, db, schemaSQL)
	mustExec(t, db, `DELETE FROM items WHERE name LIKE 'it-%'`)
	mustExec(t, db, `DELETE FROM stock_ledger_entries WHERE item_code LIKE 'it-%'`)
	mustExec(t, db, `
		INSERT INTO items (name, item_name, item_group, modified) VALUES
		('it-A100', 'Apple Juice', 'Drinks', now()),
		('it-B200', 'Bread', 'Food', now())`)
	mustExec(t, db, `
		INSERT INTO stock_ledger_entries (name, item_code, warehouse, posting_date, posting_time, qty_after_transaction, actual_qty, batch_no) VALUES
		('it-sle-1', 'it-A100', 'WH1', '2024-01-01', '09:00:00', 5, 5, 'it-LOT1'),
		('it-sle-2', 'it-A100', 'WH1', '2024-01-02', '10:30:00', 3, -2, 'it-LOT1')`)

	repo := NewPGRepository(db)

	items, err := repo.Items(ctx, store.Where(store.In("name", "it-A100", "it-B200")).Sort(store.Asc("item_name")))
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 || items[0].Name != "it-A100" {
		t.Fatalf("unexpected items: %+v", items)
	}

	entries, err := repo.LedgerEntries(ctx, store.Where(
		store.Eq("item_code", "it-A100"),
		store.Eq("warehouse", "WH1"),
		store.Eq("is_cancelled", false),
	).Sort(store.Desc("posting_date"), store.Desc("posting_time"), store.Desc("creation")).Page(1, 0))
	if err != nil {
		t.Fatalf("LedgerEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].PostingTime != "10:30:00" || entries[0].QtyAfterTransaction.String() != "3" {
		t.Fatalf("unexpected ledger head: %+v", entries)
	}

	balances, err := repo.BatchBalances(ctx, "it-A100", "WH1")
	if err != nil {
		t.Fatalf("BatchBalances: %v", err)
	}
	if len(balances) != 1 || balances[0].Qty.String() != "3" {
		t.Fatalf("unexpected balances: %+v", balances)
	}

	pl, err := repo.PriceList(ctx, "it-missing")
	if err != nil || pl != nil {
		t.Fatalf("missing price list: got %+v, %v", pl, err)
	}
}

func mustExec(t *testing.T, db *sqlx.DB, query string) {
	t.Helper()
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("exec: %v", err)
	}
}
