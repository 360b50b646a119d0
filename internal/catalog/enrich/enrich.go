// Package enrich hydrates item master records into catalog rows: barcodes,
// units, price, stock, lots and serials. Every lookup degrades to an empty
// default so one bad item never fails a whole page.
package enrich

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/availability"
	availdto "github.com/fekuna/omnipos-catalog-service/internal/availability/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	pricedto "github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// inChunk bounds the size of a single IN list sent to the store.
const inChunk = 500

type Options struct {
	PriceList string
	Customer  string
	Currency  string
	Warehouse string
	AsOf      time.Time

	Quantity   bool // resolve actual_qty for stock items
	Batches    bool // load lots even when the item is not batch tracked
	Serials    bool // load serials even when the item is not serial tracked
	Attributes bool
	SerialCap  int  // 0 means no cap
	SkipPrice  bool // caller resolves the price itself
}

type Enricher struct {
	repo    store.Repository
	prices  pricing.Resolver
	stock   availability.Resolver
	workers int
	logger  logger.ZapLogger
}

func New(repo store.Repository, prices pricing.Resolver, stock availability.Resolver, workers int, log logger.ZapLogger) *Enricher {
	if workers <= 0 {
		workers = 1
	}
	return &Enricher{repo: repo, prices: prices, stock: stock, workers: workers, logger: log}
}

// Rows returns one row per item, in input order.
func (e *Enricher) Rows(ctx context.Context, items []model.Item, opts Options) []dto.CatalogRow {
	rows := make([]dto.CatalogRow, len(items))
	if len(items) == 0 {
		return rows
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now()
	}

	codes := make([]string, len(items))
	for i, it := range items {
		codes[i] = it.Name
	}
	barcodes := e.barcodes(ctx, codes)
	uoms := e.uoms(ctx, codes)
	var attrs map[string][]dto.Attribute
	if opts.Attributes {
		attrs = e.attributes(ctx, codes)
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range items {
		i := i
		it := items[i]
		g.Go(func() error {
			row := baseRow(it)
			row.Barcodes = withStockUOM(barcodes[it.Name], it.StockUOM)
			row.UOMs = ensureStockUOM(uoms[it.Name], it.StockUOM)
			if opts.Attributes {
				row.Attributes = attrs[it.Name]
			}
			if !opts.SkipPrice {
				e.price(ctx, &row, it, opts)
			}
			e.availability(ctx, &row, it, opts)
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func (e *Enricher) price(ctx context.Context, row *dto.CatalogRow, it model.Item, opts Options) {
	res := e.prices.Resolve(ctx, pricedto.PriceRequest{
		Item:      it.Name,
		PriceList: opts.PriceList,
		Currency:  opts.Currency,
		Customer:  opts.Customer,
		StockUOM:  it.StockUOM,
		AsOf:      opts.AsOf,
	})
	row.Rate = res.Rate
	row.PriceListRate = res.PriceListRate
	row.Currency = res.Currency
	row.PriceListCurrency = res.PriceListCurrency
	row.FallbackPriceUsed = res.FallbackUsed
}

func (e *Enricher) availability(ctx context.Context, row *dto.CatalogRow, it model.Item, opts Options) {
	row.Batches = []availdto.BatchInfo{}
	row.Serials = []availdto.SerialInfo{}
	if opts.Quantity && it.IsStockItem && opts.Warehouse != "" {
		row.ActualQty = e.stock.Quantity(ctx, it.Name, opts.Warehouse)
	}
	if it.HasBatchNo || opts.Batches {
		row.Batches = e.stock.Batches(ctx, it.Name, opts.Warehouse, opts.AsOf)
	}
	if it.HasSerialNo || opts.Serials {
		serials := e.stock.Serials(ctx, it.Name, opts.Warehouse)
		if opts.SerialCap > 0 && len(serials) > opts.SerialCap {
			serials = serials[:opts.SerialCap]
		}
		row.Serials = serials
	}
}

func baseRow(it model.Item) dto.CatalogRow {
	row := dto.CatalogRow{
		ItemCode:    it.Name,
		ItemName:    it.ItemName,
		Description: it.Description,
		ItemGroup:   it.ItemGroup,
		StockUOM:    it.StockUOM,
		Brand:       it.Brand,
		Image:       it.Image,
		IsStockItem: it.IsStockItem,
		HasVariants: it.HasVariants,
		HasBatchNo:  it.HasBatchNo,
		HasSerialNo: it.HasSerialNo,
		MaxDiscount: it.MaxDiscount,
		Modified:    it.Modified,
	}
	if it.VariantOf != nil {
		row.VariantOf = *it.VariantOf
	}
	return row
}

func (e *Enricher) barcodes(ctx context.Context, codes []string) map[string][]model.ItemBarcode {
	out := map[string][]model.ItemBarcode{}
	for _, chunk := range chunks(codes) {
		recs, err := e.repo.ItemBarcodes(ctx, store.Where(store.In("parent", chunk...)).
			Sort(store.Asc("parent"), store.Asc("barcode")))
		if err != nil {
			e.logger.Warn("barcode lookup failed", zap.Int("items", len(chunk)), zap.Error(err))
			continue
		}
		for _, b := range recs {
			out[b.Item] = append(out[b.Item], b)
		}
	}
	return out
}

func (e *Enricher) uoms(ctx context.Context, codes []string) map[string][]model.UOMConversion {
	out := map[string][]model.UOMConversion{}
	for _, chunk := range chunks(codes) {
		recs, err := e.repo.UOMConversions(ctx, store.Where(store.In("parent", chunk...)).
			Sort(store.Asc("parent"), store.Asc("uom")))
		if err != nil {
			e.logger.Warn("uom lookup failed", zap.Int("items", len(chunk)), zap.Error(err))
			continue
		}
		for _, u := range recs {
			out[u.Item] = append(out[u.Item], u)
		}
	}
	return out
}

func (e *Enricher) attributes(ctx context.Context, codes []string) map[string][]dto.Attribute {
	out := map[string][]dto.Attribute{}
	for _, chunk := range chunks(codes) {
		recs, err := e.repo.VariantAttributes(ctx, store.Where(store.In("parent", chunk...)).
			Sort(store.Asc("parent"), store.Asc("idx")))
		if err != nil {
			e.logger.Warn("attribute lookup failed", zap.Int("items", len(chunk)), zap.Error(err))
			continue
		}
		for _, a := range recs {
			out[a.Item] = append(out[a.Item], dto.Attribute{Attribute: a.Attribute, Value: a.Value})
		}
	}
	return out
}

func withStockUOM(recs []model.ItemBarcode, stockUOM string) []dto.Barcode {
	out := make([]dto.Barcode, 0, len(recs))
	for _, b := range recs {
		uom := stockUOM
		if b.UOM != nil && *b.UOM != "" {
			uom = *b.UOM
		}
		out = append(out, dto.Barcode{Barcode: b.Barcode, UOM: uom})
	}
	return out
}

// ensureStockUOM guarantees the stock unit is listed with factor 1.
func ensureStockUOM(recs []model.UOMConversion, stockUOM string) []dto.UOM {
	out := make([]dto.UOM, 0, len(recs)+1)
	hasStock := false
	for _, u := range recs {
		if u.UOM == stockUOM {
			hasStock = true
			out = append(out, dto.UOM{UOM: u.UOM, ConversionFactor: decimal.NewFromInt(1)})
			continue
		}
		out = append(out, dto.UOM{UOM: u.UOM, ConversionFactor: u.ConversionFactor})
	}
	if !hasStock && stockUOM != "" {
		out = append([]dto.UOM{{UOM: stockUOM, ConversionFactor: decimal.NewFromInt(1)}}, out...)
	}
	return out
}

// ConversionFactor returns the factor for uom, 1 for the stock unit or an
// unknown unit.
func ConversionFactor(uoms []dto.UOM, uom string) decimal.Decimal {
	for _, u := range uoms {
		if u.UOM == uom && u.ConversionFactor.IsPositive() {
			return u.ConversionFactor
		}
	}
	return decimal.NewFromInt(1)
}

func chunks(codes []string) [][]string {
	uniq := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	sort.Strings(uniq)

	var out [][]string
	for start := 0; start < len(uniq); start += inChunk {
		end := start + inChunk
		if end > len(uniq) {
			end = len(uniq)
		}
		out = append(out, uniq[start:end])
	}
	return out
}
