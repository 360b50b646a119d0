package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/enrich"
	"github.com/fekuna/omnipos-catalog-service/internal/cursor"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	pricedto "github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/validator"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cachePrefix = "catalog:items"
	maxGroups   = 500
)

type Config struct {
	CacheTTL time.Duration
}

type catalogUseCase struct {
	repo     store.Repository
	prices   pricing.Resolver
	enricher *enrich.Enricher
	results  cache.ResultCache
	searcher catalog.Searcher
	validate *validator.Validator
	cfg      Config
	logger   logger.ZapLogger
}

// NewCatalogUseCase wires the query engine. results and searcher are
// optional; without them queries always run live against the store.
func NewCatalogUseCase(
	repo store.Repository,
	prices pricing.Resolver,
	enricher *enrich.Enricher,
	results cache.ResultCache,
	searcher catalog.Searcher,
	cfg Config,
	log logger.ZapLogger,
) catalog.UseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	return &catalogUseCase{
		repo:     repo,
		prices:   prices,
		enricher: enricher,
		results:  results,
		searcher: searcher,
		validate: validator.New(),
		cfg:      cfg,
		logger:   log,
	}
}

func (uc *catalogUseCase) Query(ctx context.Context, input *dto.QueryInput) ([]dto.CatalogRow, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty request", catalog.ErrInvalidInput)
	}

	var (
		rows []dto.CatalogRow
		err  error
	)
	if input.Profile.UseServerCache && uc.results != nil {
		key, kerr := cache.Key(cachePrefix, input)
		if kerr == nil {
			rows, err = cache.GetOrComputeJSON(ctx, uc.results, key, uc.cfg.CacheTTL, func(ctx context.Context) ([]dto.CatalogRow, error) {
				return uc.query(ctx, input)
			})
		} else {
			uc.logger.Warn("failed to build cache key, querying live", zap.Error(kerr))
			rows, err = uc.query(ctx, input)
		}
	} else {
		rows, err = uc.query(ctx, input)
	}

	if err != nil {
		uc.logger.Error("catalog query failed",
			zap.String("pos_profile", input.Profile.Name),
			zap.String("price_list", input.PriceList),
			zap.Error(err),
		)
		return []dto.CatalogRow{}, nil
	}
	return rows, nil
}

func (uc *catalogUseCase) query(ctx context.Context, in *dto.QueryInput) ([]dto.CatalogRow, error) {
	p := in.Profile
	term := strings.TrimSpace(in.SearchTerm)
	limit, offset := window(in, term)

	q := store.Where(
		store.Eq("disabled", false),
		store.Eq("is_sales_item", true),
		store.Eq("is_fixed_asset", false),
	)
	if since, ok := cursor.Parse(in.ModifiedAfter); ok {
		q = q.And(store.Gt("modified", since))
	}
	if len(p.ItemGroups) > 0 {
		q = q.And(store.In("item_group", p.ItemGroups...))
	}
	if g := strings.TrimSpace(in.ItemGroup); g != "" && !strings.EqualFold(g, "ALL") {
		q = q.And(store.Contains("item_group", g))
	}
	if !p.ShowTemplateItems {
		q = q.And(store.Eq("has_variants", false))
	}
	if term != "" {
		if hit := uc.identify(ctx, term, "", p.SearchSerialNo); hit != nil {
			// a scanned code names exactly one item, paging does not apply
			q = q.And(store.Eq("name", hit.ItemCode))
			limit, offset = 1, 0
		} else {
			q = q.Or(store.Contains("name", term), store.Contains("item_name", term))
			if codes := uc.indexCandidates(ctx, term, limit, offset); len(codes) > 0 {
				q = q.And(store.In("name", codes...))
			}
		}
	}

	items, err := uc.repo.Items(ctx, q.Sort(store.Asc("item_name"), store.Asc("name")).Page(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}

	rows := uc.enricher.Rows(ctx, items, enrich.Options{
		PriceList:  in.PriceList,
		Customer:   in.Customer,
		Currency:   p.Currency,
		Warehouse:  p.Warehouse,
		Quantity:   p.DisplayItemsInStock || p.UseLimitSearch,
		Batches:    p.SearchBatchNo,
		Serials:    p.SearchSerialNo,
		Attributes: p.ShowTemplateItems,
	})

	if p.DisplayItemsInStock {
		inStock := rows[:0]
		for _, r := range rows {
			if r.ActualQty.IsPositive() {
				inStock = append(inStock, r)
			}
		}
		rows = inStock
	}
	return rows, nil
}

// window resolves the page size. Bounded mode caps an open-ended scan and a
// forced reload lifts the cap for searches.
func window(in *dto.QueryInput, term string) (limit, offset int) {
	if in.Limit.Set {
		limit = in.Limit.Value
	}
	if in.Offset.Set {
		offset = in.Offset.Value
	}
	if in.Profile.UseLimitSearch && limit == 0 {
		limit = in.Profile.EffectiveSearchLimit()
	}
	if in.Profile.ForceReloadItems && term != "" {
		limit = 0
	}
	return limit, offset
}

// indexCandidates returns the codes the search index ranks for term. They
// only narrow the substring match. Nil means the store match runs alone.
func (uc *catalogUseCase) indexCandidates(ctx context.Context, term string, limit, offset int) []string {
	if uc.searcher == nil {
		return nil
	}
	size := limit
	if size > 0 {
		size += offset
	}
	codes, err := uc.searcher.SearchCodes(ctx, term, size)
	if err != nil {
		uc.logger.Error("index search failed, falling back to store match", zap.String("term", term), zap.Error(err))
		return nil
	}
	return codes
}

// identify resolves an exact barcode, then lot code, then serial number.
func (uc *catalogUseCase) identify(ctx context.Context, term, warehouse string, serials bool) *dto.IdentifierHit {
	barcodes, err := uc.repo.ItemBarcodes(ctx, store.Where(store.Eq("barcode", term)).Sort(store.Asc("name")).Page(1, 0))
	if err != nil {
		uc.logger.Warn("barcode resolution failed", zap.String("term", term), zap.Error(err))
	} else if len(barcodes) > 0 {
		hit := &dto.IdentifierHit{ItemCode: barcodes[0].Item, Kind: dto.KindBarcode, Value: term}
		if barcodes[0].UOM != nil {
			hit.UOM = *barcodes[0].UOM
		}
		return hit
	}

	batches, err := uc.repo.Batches(ctx, store.Where(store.Eq("name", term)).Page(1, 0))
	if err != nil {
		uc.logger.Warn("batch resolution failed", zap.String("term", term), zap.Error(err))
	} else if len(batches) > 0 {
		return &dto.IdentifierHit{ItemCode: batches[0].Item, Kind: dto.KindBatch, Value: term}
	}

	if !serials {
		return nil
	}
	q := store.Where(store.Eq("name", term))
	if warehouse != "" {
		q = q.And(store.Eq("warehouse", warehouse))
	}
	serialNos, err := uc.repo.SerialNos(ctx, q.Page(1, 0))
	if err != nil {
		uc.logger.Warn("serial resolution failed", zap.String("term", term), zap.Error(err))
		return nil
	}
	if len(serialNos) > 0 {
		return &dto.IdentifierHit{ItemCode: serialNos[0].Item, Kind: dto.KindSerial, Value: term}
	}
	return nil
}

func (uc *catalogUseCase) ItemGroups(ctx context.Context, input *dto.GroupsInput) ([]dto.ItemGroup, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty request", catalog.ErrInvalidInput)
	}

	q := store.Where(store.Eq("is_group", false))
	if len(input.Profile.ItemGroups) > 0 {
		q = q.And(store.In("name", input.Profile.ItemGroups...))
	}
	groups, err := uc.repo.ItemGroups(ctx, q.Sort(store.Asc("name")).Page(maxGroups, 0))
	if err != nil {
		uc.logger.Error("item group scan failed", zap.String("pos_profile", input.Profile.Name), zap.Error(err))
		return []dto.ItemGroup{}, nil
	}

	out := make([]dto.ItemGroup, 0, len(groups))
	for _, g := range groups {
		ig := dto.ItemGroup{Name: g.Name}
		if g.ParentItemGroup != nil {
			ig.Parent = *g.ParentItemGroup
		}
		out = append(out, ig)
	}
	return out, nil
}

func (uc *catalogUseCase) VariantsOf(ctx context.Context, input *dto.VariantsInput) (*dto.VariantsResult, error) {
	if err := uc.check(input); err != nil {
		return nil, err
	}

	out := &dto.VariantsResult{Items: []dto.CatalogRow{}, AttributesMeta: map[string][]string{}}
	items, err := uc.repo.Items(ctx, store.Where(
		store.Eq("variant_of", input.Parent),
		store.Eq("disabled", false),
	).Sort(store.Asc("name")))
	if err != nil {
		uc.logger.Error("variant scan failed", zap.String("parent", input.Parent), zap.Error(err))
		return out, nil
	}

	p := input.Profile
	out.Items = uc.enricher.Rows(ctx, items, enrich.Options{
		PriceList:  input.PriceList,
		Customer:   input.Customer,
		Currency:   p.Currency,
		Warehouse:  p.Warehouse,
		Quantity:   true,
		Batches:    p.SearchBatchNo,
		Serials:    p.SearchSerialNo,
		Attributes: true,
	})

	seen := map[string]map[string]bool{}
	for _, row := range out.Items {
		for _, a := range row.Attributes {
			if a.Value == "" {
				continue
			}
			if seen[a.Attribute] == nil {
				seen[a.Attribute] = map[string]bool{}
			}
			if !seen[a.Attribute][a.Value] {
				seen[a.Attribute][a.Value] = true
				out.AttributesMeta[a.Attribute] = append(out.AttributesMeta[a.Attribute], a.Value)
			}
		}
	}
	for _, vals := range out.AttributesMeta {
		sort.Strings(vals)
	}
	return out, nil
}

func (uc *catalogUseCase) DetailOf(ctx context.Context, input *dto.DetailInput) (*dto.ItemDetail, error) {
	if err := uc.check(input); err != nil {
		return nil, err
	}

	it, err := uc.item(ctx, input.Item.ItemCode)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("%w: %s", catalog.ErrItemNotFound, input.Item.ItemCode)
	}

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	row := uc.enricher.Rows(ctx, []model.Item{*it}, enrich.Options{
		PriceList: input.PriceList,
		Customer:  input.Item.Customer,
		Currency:  input.Currency,
		Warehouse: input.Warehouse,
		AsOf:      asOf,
		Quantity:  true,
		SkipPrice: true,
	})[0]

	uom := input.Item.UOM
	if uom == "" {
		uom = it.StockUOM
	}
	qty := input.Item.Qty
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	factor := enrich.ConversionFactor(row.UOMs, uom)

	price := uc.prices.Resolve(ctx, pricedto.PriceRequest{
		Item:      it.Name,
		PriceList: input.PriceList,
		Currency:  input.Currency,
		Customer:  input.Item.Customer,
		UOM:       uom,
		StockUOM:  it.StockUOM,
		Company:   input.Company,
		AsOf:      asOf,
		Qty:       qty,
	})
	row.Rate = price.Rate
	row.PriceListRate = price.PriceListRate
	row.Currency = price.Currency
	row.PriceListCurrency = price.PriceListCurrency
	row.FallbackPriceUsed = price.FallbackUsed

	return &dto.ItemDetail{
		CatalogRow:       row,
		Price:            price,
		Qty:              qty,
		UOM:              uom,
		ConversionFactor: factor,
		StockQty:         qty.Mul(factor),
	}, nil
}

func (uc *catalogUseCase) ResolveByBarcode(ctx context.Context, input *dto.BarcodeInput) (*dto.BarcodeHit, error) {
	if err := uc.check(input); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Barcode)
	if code == "" {
		return nil, fmt.Errorf("%w: barcode is required", catalog.ErrInvalidInput)
	}

	recs, err := uc.repo.ItemBarcodes(ctx, store.Where(store.Eq("barcode", code)).Sort(store.Asc("name")).Page(1, 0))
	if err != nil {
		uc.logger.Error("barcode lookup failed", zap.String("barcode", code), zap.Error(err))
		return nil, nil
	}
	if len(recs) == 0 {
		return nil, nil
	}

	it, err := uc.item(ctx, recs[0].Item)
	if err != nil {
		uc.logger.Error("barcode item lookup failed", zap.String("item_code", recs[0].Item), zap.Error(err))
		return nil, nil
	}
	if it == nil {
		return nil, nil
	}

	uom := it.StockUOM
	if recs[0].UOM != nil && *recs[0].UOM != "" {
		uom = *recs[0].UOM
	}
	price := uc.prices.Resolve(ctx, pricedto.PriceRequest{
		Item:      it.Name,
		PriceList: input.PriceList,
		Currency:  input.Currency,
		UOM:       uom,
		StockUOM:  it.StockUOM,
	})

	return &dto.BarcodeHit{
		ItemCode: it.Name,
		ItemName: it.ItemName,
		Barcode:  code,
		Rate:     price.Rate,
		UOM:      uom,
		Currency: price.Currency,
	}, nil
}

func (uc *catalogUseCase) SearchIdentifier(ctx context.Context, input *dto.IdentifierInput) (*dto.IdentifierHit, error) {
	if err := uc.check(input); err != nil {
		return nil, err
	}
	return uc.identify(ctx, strings.TrimSpace(input.Term), input.Warehouse, input.SearchSerialNo), nil
}

func (uc *catalogUseCase) item(ctx context.Context, code string) (*model.Item, error) {
	items, err := uc.repo.Items(ctx, store.Where(store.Eq("name", code)).Page(1, 0))
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", code, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (uc *catalogUseCase) check(input interface{}) error {
	if input == nil {
		return fmt.Errorf("%w: empty request", catalog.ErrInvalidInput)
	}
	if err := uc.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", catalog.ErrInvalidInput, validator.Describe(err))
	}
	return nil
}
