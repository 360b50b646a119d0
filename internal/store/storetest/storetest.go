// Package storetest provides record builders and a fault-injecting
// repository wrapper for tests of packages that read through store.Repository.
package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/shopspring/decimal"
)

var ErrInjected = errors.New("storetest: injected failure")

func Str(s string) *string { return &s }

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DatePtr(y int, m time.Month, d int) *time.Time {
	t := Date(y, m, d)
	return &t
}

func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

func Base(name string, modified time.Time) model.BaseModel {
	return model.BaseModel{Name: name, Modified: modified}
}

// Failing wraps a repository and returns ErrInjected from the named methods.
type Failing struct {
	store.Repository
	Methods map[string]bool
}

func Fail(repo store.Repository, methods ...string) *Failing {
	f := &Failing{Repository: repo, Methods: map[string]bool{}}
	for _, m := range methods {
		f.Methods[m] = true
	}
	return f
}

func (f *Failing) Items(ctx context.Context, q store.Query) ([]model.Item, error) {
	if f.Methods["Items"] {
		return nil, ErrInjected
	}
	return f.Repository.Items(ctx, q)
}

func (f *Failing) ItemBarcodes(ctx context.Context, q store.Query) ([]model.ItemBarcode, error) {
	if f.Methods["ItemBarcodes"] {
		return nil, ErrInjected
	}
	return f.Repository.ItemBarcodes(ctx, q)
}

func (f *Failing) UOMConversions(ctx context.Context, q store.Query) ([]model.UOMConversion, error) {
	if f.Methods["UOMConversions"] {
		return nil, ErrInjected
	}
	return f.Repository.UOMConversions(ctx, q)
}

func (f *Failing) ItemPrices(ctx context.Context, q store.Query) ([]model.ItemPrice, error) {
	if f.Methods["ItemPrices"] {
		return nil, ErrInjected
	}
	return f.Repository.ItemPrices(ctx, q)
}

func (f *Failing) ExchangeRates(ctx context.Context, q store.Query) ([]model.CurrencyExchange, error) {
	if f.Methods["ExchangeRates"] {
		return nil, ErrInjected
	}
	return f.Repository.ExchangeRates(ctx, q)
}

func (f *Failing) LedgerEntries(ctx context.Context, q store.Query) ([]model.StockLedgerEntry, error) {
	if f.Methods["LedgerEntries"] {
		return nil, ErrInjected
	}
	return f.Repository.LedgerEntries(ctx, q)
}

func (f *Failing) Batches(ctx context.Context, q store.Query) ([]model.Batch, error) {
	if f.Methods["Batches"] {
		return nil, ErrInjected
	}
	return f.Repository.Batches(ctx, q)
}

func (f *Failing) BatchBalances(ctx context.Context, item, warehouse string) ([]model.BatchBalance, error) {
	if f.Methods["BatchBalances"] {
		return nil, ErrInjected
	}
	return f.Repository.BatchBalances(ctx, item, warehouse)
}

func (f *Failing) SerialNos(ctx context.Context, q store.Query) ([]model.SerialNo, error) {
	if f.Methods["SerialNos"] {
		return nil, ErrInjected
	}
	return f.Repository.SerialNos(ctx, q)
}

func (f *Failing) Customers(ctx context.Context, q store.Query) ([]model.Customer, error) {
	if f.Methods["Customers"] {
		return nil, ErrInjected
	}
	return f.Repository.Customers(ctx, q)
}

func (f *Failing) ItemGroups(ctx context.Context, q store.Query) ([]model.ItemGroup, error) {
	if f.Methods["ItemGroups"] {
		return nil, ErrInjected
	}
	return f.Repository.ItemGroups(ctx, q)
}
