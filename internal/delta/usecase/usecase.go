package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	catdto "github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/enrich"
	"github.com/fekuna/omnipos-catalog-service/internal/cursor"
	"github.com/fekuna/omnipos-catalog-service/internal/delta"
	"github.com/fekuna/omnipos-catalog-service/internal/delta/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxCustomerLimit = 500
	summaryLayout    = "2006-01-02 15:04:05"
)

type Config struct {
	ChangeScanLimit     int           // per-category cap on change scans
	CustomerChangeLimit int           // cap for customer and group scans, and the RecentCustomers default
	SelectiveFetchCap   int           // max identifiers honoured by FetchByIdentifiers
	SerialCap           int           // max serials per fetched item
	Lookback            time.Duration // window used when the cursor is absent or unparseable
	DefaultLang         string
}

func (c Config) withDefaults() Config {
	if c.ChangeScanLimit <= 0 {
		c.ChangeScanLimit = 100
	}
	if c.CustomerChangeLimit <= 0 {
		c.CustomerChangeLimit = 50
	}
	if c.SelectiveFetchCap <= 0 {
		c.SelectiveFetchCap = 100
	}
	if c.SerialCap <= 0 {
		c.SerialCap = 100
	}
	if c.Lookback <= 0 {
		c.Lookback = 24 * time.Hour
	}
	if c.DefaultLang == "" {
		c.DefaultLang = "en"
	}
	return c
}

type deltaUseCase struct {
	repo      store.Repository
	enricher  *enrich.Enricher
	publisher events.Publisher
	cfg       Config
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewDeltaUseCase(repo store.Repository, enricher *enrich.Enricher, publisher events.Publisher, cfg Config, log logger.ZapLogger) delta.UseCase {
	return newDeltaUseCase(repo, enricher, publisher, cfg, log)
}

func newDeltaUseCase(repo store.Repository, enricher *enrich.Enricher, publisher events.Publisher, cfg Config, log logger.ZapLogger) *deltaUseCase {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &deltaUseCase{
		repo:      repo,
		enricher:  enricher,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
		logger:    log,
		now:       time.Now,
	}
}

// scan reports the item codes touched by one category of master data
// modified after since, newest first, at most limit records.
type scan struct {
	category string
	limit    int
	items    bool // whether the category contributes to the changed item set
	run      func(ctx context.Context, since time.Time, limit int) (codes []string, err error)
}

func (uc *deltaUseCase) CheckChanges(ctx context.Context, input *dto.ChangesInput) (*dto.ChangeSummary, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty request", delta.ErrInvalidInput)
	}

	now := uc.now().UTC()
	since, valid := cursor.Parse(input.Cursor)
	if !valid {
		since = now.Add(-uc.cfg.Lookback)
	}
	warehouse := input.Warehouse
	if warehouse == "" {
		warehouse = input.Profile.Warehouse
	}
	langs := []string{middleware.LanguageFromContext(ctx), uc.cfg.DefaultLang}
	sinceText := since.UTC().Format(summaryLayout)

	out := &dto.ChangeSummary{
		Counts:       map[string]int{},
		ChangedItems: []string{},
		ItemDetails:  []dto.ChangedItem{},
		Since:        cursor.Format(since),
		ServerTime:   cursor.Format(now),
		Debug: dto.Debug{
			PriceList:   input.PriceList,
			Warehouse:   warehouse,
			CursorValid: valid,
			Limits:      map[string]int{},
		},
	}

	var details []dto.ChangedItem
	scans := uc.scans(input.PriceList, warehouse, &details)
	found := make([][]string, len(scans))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scans {
		i, s := i, s
		out.Debug.Limits[s.category] = s.limit
		g.Go(func() error {
			codes, err := s.run(gctx, since, s.limit)
			if err != nil {
				return fmt.Errorf("scan %s: %w", s.category, err)
			}
			found[i] = codes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("change check failed",
			zap.String("price_list", input.PriceList),
			zap.String("since", out.Since),
			zap.Error(err),
		)
		out.Counts = map[string]int{}
		out.Error = err.Error()
		out.Summary = i18n.Localize("ChangesFailed", nil, -1, langs...)
		return out, nil
	}

	changed := map[string]bool{}
	for i, s := range scans {
		out.Counts[s.category] = len(found[i])
		if !s.items {
			continue
		}
		for _, code := range found[i] {
			if code != "" {
				changed[code] = true
			}
		}
	}
	for code := range changed {
		out.ChangedItems = append(out.ChangedItems, code)
	}
	sort.Strings(out.ChangedItems)
	out.TotalItemChanges = len(out.ChangedItems)
	out.ItemDetails = append(out.ItemDetails, details...)

	otherChanges := out.Counts[dto.CategoryCustomers] > 0 || out.Counts[dto.CategoryItemGroups] > 0
	out.HasChanges = out.TotalItemChanges > 0 || otherChanges

	switch {
	case out.TotalItemChanges > 0:
		out.Summary = i18n.Localize("ChangesSummary", map[string]interface{}{
			"Count": out.TotalItemChanges,
			"Since": sinceText,
		}, out.TotalItemChanges, langs...)
	case otherChanges:
		out.Summary = i18n.Localize("ChangesCustomersOnly", map[string]interface{}{"Since": sinceText}, -1, langs...)
	default:
		out.Summary = i18n.Localize("ChangesNone", map[string]interface{}{"Since": sinceText}, -1, langs...)
	}

	if out.HasChanges {
		uc.publisher.Publish(ctx, events.Event{
			Type: events.TypeChangesDetected,
			Key:  input.PriceList,
			Payload: map[string]interface{}{
				"price_list":         input.PriceList,
				"warehouse":          warehouse,
				"since":              out.Since,
				"counts":             out.Counts,
				"total_item_changes": out.TotalItemChanges,
			},
		})
	}
	return out, nil
}

// scans lists the category scans. Every scan orders by modified DESC then
// record name so that a later cursor always yields a subset.
func (uc *deltaUseCase) scans(priceList, warehouse string, details *[]dto.ChangedItem) []scan {
	itemLimit := uc.cfg.ChangeScanLimit
	otherLimit := uc.cfg.CustomerChangeLimit
	newest := []store.Order{store.Desc("modified"), store.Asc("name")}

	scans := []scan{
		{category: dto.CategoryItems, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.Items(ctx, store.Where(
				store.Gt("modified", since),
				store.Eq("disabled", false),
				store.Eq("is_sales_item", true),
			).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, it := range recs {
				codes = append(codes, it.Name)
				*details = append(*details, dto.ChangedItem{
					ItemCode:    it.Name,
					ItemName:    it.ItemName,
					Description: it.Description,
					Modified:    it.Modified,
				})
			}
			return codes, nil
		}},
		{category: dto.CategoryPrices, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			// price changes only count for the terminal's own list
			if priceList == "" {
				return nil, nil
			}
			recs, err := uc.repo.ItemPrices(ctx, store.Where(
				store.Gt("modified", since),
				store.Eq("selling", true),
				store.Eq("price_list", priceList),
			).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, p := range recs {
				codes = append(codes, p.Item)
			}
			return codes, nil
		}},
		{category: dto.CategoryUOMs, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.UOMConversions(ctx, store.Where(store.Gt("modified", since)).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, u := range recs {
				codes = append(codes, u.Item)
			}
			return codes, nil
		}},
		{category: dto.CategoryBarcodes, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.ItemBarcodes(ctx, store.Where(store.Gt("modified", since)).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, b := range recs {
				codes = append(codes, b.Item)
			}
			return codes, nil
		}},
		{category: dto.CategoryCustomers, limit: otherLimit, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.Customers(ctx, store.Where(
				store.Gt("modified", since),
				store.Eq("disabled", false),
			).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(recs))
			for _, c := range recs {
				names = append(names, c.Name)
			}
			return names, nil
		}},
		{category: dto.CategoryItemGroups, limit: otherLimit, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.ItemGroups(ctx, store.Where(store.Gt("modified", since)).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(recs))
			for _, g := range recs {
				names = append(names, g.Name)
			}
			return names, nil
		}},
		{category: dto.CategoryBatches, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.Batches(ctx, store.Where(store.Gt("modified", since)).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, b := range recs {
				codes = append(codes, b.Item)
			}
			return codes, nil
		}},
		{category: dto.CategorySerials, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.SerialNos(ctx, store.Where(store.Gt("modified", since)).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, s := range recs {
				codes = append(codes, s.Item)
			}
			return codes, nil
		}},
	}

	if warehouse != "" {
		scans = append(scans, scan{category: dto.CategoryStock, limit: itemLimit, items: true, run: func(ctx context.Context, since time.Time, limit int) ([]string, error) {
			recs, err := uc.repo.LedgerEntries(ctx, store.Where(
				store.Gt("modified", since),
				store.Eq("warehouse", warehouse),
				store.Eq("is_cancelled", false),
			).Sort(newest...).Page(limit, 0))
			if err != nil {
				return nil, err
			}
			codes := make([]string, 0, len(recs))
			for _, e := range recs {
				codes = append(codes, e.Item)
			}
			return codes, nil
		}})
	}
	return scans
}

func (uc *deltaUseCase) FetchByIdentifiers(ctx context.Context, input *dto.FetchInput) (*dto.FetchOutput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty request", delta.ErrInvalidInput)
	}

	ids := dedupe(input.Identifiers)
	out := &dto.FetchOutput{Items: []catdto.CatalogRow{}, Requested: len(ids)}
	if len(ids) > uc.cfg.SelectiveFetchCap {
		uc.logger.Warn("selective fetch truncated",
			zap.Int("requested", len(ids)),
			zap.Int("cap", uc.cfg.SelectiveFetchCap),
		)
		ids = ids[:uc.cfg.SelectiveFetchCap]
		out.Truncated = true
	}
	if len(ids) == 0 {
		return out, nil
	}

	p := input.Profile
	q := store.Where(
		store.In("name", ids...),
		store.Eq("disabled", false),
		store.Eq("is_sales_item", true),
	)
	if len(p.ItemGroups) > 0 {
		q = q.And(store.In("item_group", p.ItemGroups...))
	}
	items, err := uc.repo.Items(ctx, q.Sort(store.Asc("name")))
	if err != nil {
		uc.logger.Error("selective fetch failed", zap.Int("identifiers", len(ids)), zap.Error(err))
		return out, nil
	}

	out.Items = uc.enricher.Rows(ctx, items, enrich.Options{
		PriceList: input.PriceList,
		Customer:  input.Customer,
		Currency:  p.Currency,
		Warehouse: p.Warehouse,
		Quantity:  true,
		Batches:   p.SearchBatchNo,
		Serials:   p.SearchSerialNo,
		SerialCap: uc.cfg.SerialCap,
	})
	return out, nil
}

func (uc *deltaUseCase) RecentCustomers(ctx context.Context, input *dto.CustomersInput) (*dto.CustomersOutput, error) {
	if input == nil {
		input = &dto.CustomersInput{}
	}

	limit := uc.cfg.CustomerChangeLimit
	if input.Limit.Set && input.Limit.Value > 0 {
		limit = input.Limit.Value
	}
	if limit > maxCustomerLimit {
		limit = maxCustomerLimit
	}

	q := store.Where(store.Eq("disabled", false))
	if since, ok := cursor.Parse(input.Cursor); ok {
		q = q.And(store.Gt("modified", since))
	}

	out := &dto.CustomersOutput{Customers: []dto.CustomerSummary{}}
	recs, err := uc.repo.Customers(ctx, q.Sort(store.Desc("modified"), store.Asc("name")).Page(limit, 0))
	if err != nil {
		uc.logger.Error("recent customers lookup failed", zap.String("cursor", input.Cursor), zap.Error(err))
		return out, nil
	}
	for _, c := range recs {
		out.Customers = append(out.Customers, dto.CustomerSummary{
			Name:             c.Name,
			CustomerName:     c.CustomerName,
			CustomerGroup:    c.CustomerGroup,
			Territory:        c.Territory,
			DefaultPriceList: c.DefaultPriceList,
			MobileNo:         c.MobileNo,
			EmailID:          c.EmailID,
			Modified:         c.Modified,
		})
	}
	out.Count = len(out.Customers)
	return out, nil
}

// dedupe trims identifiers and drops blanks and repeats, keeping first
// occurrence order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
