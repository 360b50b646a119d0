package store

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository is the read-only view over the back-office master data.
// Point lookups return (nil, nil) when the record does not exist.
type Repository interface {
	Items(ctx context.Context, q Query) ([]model.Item, error)
	ItemBarcodes(ctx context.Context, q Query) ([]model.ItemBarcode, error)
	UOMConversions(ctx context.Context, q Query) ([]model.UOMConversion, error)
	VariantAttributes(ctx context.Context, q Query) ([]model.VariantAttribute, error)
	ItemGroups(ctx context.Context, q Query) ([]model.ItemGroup, error)

	ItemPrices(ctx context.Context, q Query) ([]model.ItemPrice, error)
	PriceList(ctx context.Context, name string) (*model.PriceList, error)
	Company(ctx context.Context, name string) (*model.Company, error)
	ExchangeRates(ctx context.Context, q Query) ([]model.CurrencyExchange, error)

	LedgerEntries(ctx context.Context, q Query) ([]model.StockLedgerEntry, error)
	Batches(ctx context.Context, q Query) ([]model.Batch, error)
	// BatchBalances sums non-cancelled ledger movements per batch for an item
	// in a warehouse.
	BatchBalances(ctx context.Context, item, warehouse string) ([]model.BatchBalance, error)
	SerialNos(ctx context.Context, q Query) ([]model.SerialNo, error)

	Customers(ctx context.Context, q Query) ([]model.Customer, error)
}
