// Package memory is an in-process implementation of store.Repository. It
// evaluates the same typed predicates as the SQL adapter over plain slices and
// backs STORE_DRIVER=memory as well as the service tests.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Data is a snapshot of master records. It doubles as the YAML fixture layout.
type Data struct {
	Items             []model.Item             `yaml:"items"`
	ItemBarcodes      []model.ItemBarcode      `yaml:"item_barcodes"`
	UOMConversions    []model.UOMConversion    `yaml:"uom_conversions"`
	VariantAttributes []model.VariantAttribute `yaml:"variant_attributes"`
	ItemGroups        []model.ItemGroup        `yaml:"item_groups"`
	ItemPrices        []model.ItemPrice        `yaml:"item_prices"`
	PriceLists        []model.PriceList        `yaml:"price_lists"`
	Companies         []model.Company          `yaml:"companies"`
	ExchangeRates     []model.CurrencyExchange `yaml:"currency_exchanges"`
	LedgerEntries     []model.StockLedgerEntry `yaml:"stock_ledger_entries"`
	Batches           []model.Batch            `yaml:"batches"`
	SerialNos         []model.SerialNo         `yaml:"serial_nos"`
	Customers         []model.Customer         `yaml:"customers"`
}

type Store struct {
	mu   sync.RWMutex
	data Data
}

var _ store.Repository = (*Store)(nil)

func New(data Data) *Store {
	return &Store{data: data}
}

// LoadFile reads a YAML fixture from disk.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return FromYAML(raw)
}

func FromYAML(raw []byte) (*Store, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return New(data), nil
}

// Replace swaps the whole snapshot.
func (s *Store) Replace(data Data) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

func (s *Store) snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Store) Items(ctx context.Context, q store.Query) ([]model.Item, error) {
	return apply(s.snapshot().Items, q)
}

func (s *Store) ItemBarcodes(ctx context.Context, q store.Query) ([]model.ItemBarcode, error) {
	return apply(s.snapshot().ItemBarcodes, q)
}

func (s *Store) UOMConversions(ctx context.Context, q store.Query) ([]model.UOMConversion, error) {
	return apply(s.snapshot().UOMConversions, q)
}

func (s *Store) VariantAttributes(ctx context.Context, q store.Query) ([]model.VariantAttribute, error) {
	return apply(s.snapshot().VariantAttributes, q)
}

func (s *Store) ItemGroups(ctx context.Context, q store.Query) ([]model.ItemGroup, error) {
	return apply(s.snapshot().ItemGroups, q)
}

func (s *Store) ItemPrices(ctx context.Context, q store.Query) ([]model.ItemPrice, error) {
	return apply(s.snapshot().ItemPrices, q)
}

func (s *Store) PriceList(ctx context.Context, name string) (*model.PriceList, error) {
	for _, pl := range s.snapshot().PriceLists {
		if pl.Name == name {
			pl := pl
			return &pl, nil
		}
	}
	return nil, nil
}

func (s *Store) Company(ctx context.Context, name string) (*model.Company, error) {
	for _, c := range s.snapshot().Companies {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ExchangeRates(ctx context.Context, q store.Query) ([]model.CurrencyExchange, error) {
	return apply(s.snapshot().ExchangeRates, q)
}

func (s *Store) LedgerEntries(ctx context.Context, q store.Query) ([]model.StockLedgerEntry, error) {
	return apply(s.snapshot().LedgerEntries, q)
}

func (s *Store) Batches(ctx context.Context, q store.Query) ([]model.Batch, error) {
	return apply(s.snapshot().Batches, q)
}

func (s *Store) BatchBalances(ctx context.Context, item, warehouse string) ([]model.BatchBalance, error) {
	sums := map[string]decimal.Decimal{}
	order := []string{}
	for _, e := range s.snapshot().LedgerEntries {
		if e.Item != item || e.Warehouse != warehouse || e.IsCancelled || e.BatchNo == nil || *e.BatchNo == "" {
			continue
		}
		if _, ok := sums[*e.BatchNo]; !ok {
			order = append(order, *e.BatchNo)
		}
		sums[*e.BatchNo] = sums[*e.BatchNo].Add(e.ActualQty)
	}
	out := make([]model.BatchBalance, 0, len(order))
	for _, b := range order {
		out = append(out, model.BatchBalance{BatchNo: b, Qty: sums[b]})
	}
	return out, nil
}

func (s *Store) SerialNos(ctx context.Context, q store.Query) ([]model.SerialNo, error) {
	return apply(s.snapshot().SerialNos, q)
}

func (s *Store) Customers(ctx context.Context, q store.Query) ([]model.Customer, error) {
	return apply(s.snapshot().Customers, q)
}
