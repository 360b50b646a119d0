package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	// Precision is the number of decimal places kept on converted and
	// extended money values.
	Precision int32
}

type priceResolver struct {
	repo      store.Repository
	rates     pricing.ExchangeRates
	publisher events.Publisher
	cfg       Config
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewPriceResolver(repo store.Repository, rates pricing.ExchangeRates, publisher events.Publisher, cfg Config, log logger.ZapLogger) pricing.Resolver {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &priceResolver{
		repo:      repo,
		rates:     rates,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

func (r *priceResolver) Resolve(ctx context.Context, req dto.PriceRequest) dto.PriceResult {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = r.now()
	}
	qty := req.Qty
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}

	res := dto.PriceResult{ConversionRate: decimal.NewFromInt(1)}

	plCurrency := ""
	pl, err := r.repo.PriceList(ctx, req.PriceList)
	if err != nil {
		r.logger.Warn("price list lookup failed", zap.String("price_list", req.PriceList), zap.Error(err))
	} else if pl != nil {
		plCurrency = pl.Currency
	}
	res.PriceListCurrency = plCurrency

	entry := r.primary(ctx, req, asOf)
	if entry == nil || !entry.Rate.IsPositive() {
		entry = r.fallback(ctx, req, asOf)
		if entry != nil {
			res.FallbackUsed = true
			r.logger.Info("fallback price used",
				zap.String("item_code", req.Item),
				zap.String("price_list", req.PriceList),
				zap.String("price_entry", entry.Name),
			)
			r.publisher.Publish(ctx, events.Event{
				Type: events.TypeFallbackPriceUsed,
				Key:  req.Item,
				Payload: map[string]interface{}{
					"item_code":   req.Item,
					"price_list":  req.PriceList,
					"customer":    req.Customer,
					"price_entry": entry.Name,
					"rate":        entry.Rate.String(),
				},
			})
		}
	}

	res.Currency = firstNonEmpty(req.Currency, plCurrency)
	if entry != nil {
		res.Found = true
		res.PriceEntry = entry.Name
		res.PriceListRate = entry.Rate
		res.Rate = entry.Rate
		res.Currency = firstNonEmpty(entry.Currency, plCurrency, req.Currency)
	}
	if res.PriceListCurrency == "" {
		res.PriceListCurrency = res.Currency
	}

	res.ConversionRate = r.conversionRate(ctx, req, res.PriceListCurrency, asOf)
	res.Amount = res.LineAmount(qty, r.cfg.Precision)
	res.BasePriceListRate = r.convert(res.PriceListRate, res.ConversionRate)
	res.BaseRate = r.convert(res.Rate, res.ConversionRate)
	res.BaseAmount = r.convert(res.Amount, res.ConversionRate)
	return res
}

// primary selects among active selling entries visible to the customer,
// narrowed to the best UOM tier and the requested currency when possible.
func (r *priceResolver) primary(ctx context.Context, req dto.PriceRequest, asOf time.Time) *model.ItemPrice {
	day := model.Day(asOf)
	q := store.Where(
		store.Eq("item_code", req.Item),
		store.Eq("price_list", req.PriceList),
		store.Eq("selling", true),
	).
		Or(store.IsNull("valid_from"), store.Lte("valid_from", day)).
		Or(store.IsNull("valid_upto"), store.Gte("valid_upto", day))
	if req.Customer != "" {
		q = q.Or(store.IsNull("customer"), store.Eq("customer", ""), store.Eq("customer", req.Customer))
	} else {
		q = q.Or(store.IsNull("customer"), store.Eq("customer", ""))
	}

	entries, err := r.repo.ItemPrices(ctx, q)
	if err != nil {
		r.logger.Error("price lookup failed",
			zap.String("item_code", req.Item),
			zap.String("price_list", req.PriceList),
			zap.Error(err),
		)
		return nil
	}

	var active, scoped []model.ItemPrice
	for _, e := range entries {
		if !e.ActiveAt(asOf) {
			continue
		}
		if e.CustomerScoped() {
			if *e.Customer != req.Customer {
				continue
			}
			scoped = append(scoped, e)
		}
		active = append(active, e)
	}

	// customer scope outranks unit and currency tiers
	candidates := narrow(scoped, req)
	if len(candidates) == 0 {
		candidates = narrow(active, req)
	}
	if len(candidates) == 0 {
		return nil
	}
	rank(candidates, true)
	return &candidates[0]
}

func narrow(entries []model.ItemPrice, req dto.PriceRequest) []model.ItemPrice {
	candidates := byUOM(entries, req.UOM, req.StockUOM)
	if req.Currency != "" {
		if same := byCurrency(candidates, req.Currency); len(same) > 0 {
			candidates = same
		}
	}
	return candidates
}

// fallback is the direct lookup: validity window and selling flag only,
// customer scope and UOM ignored, first positive rate wins.
func (r *priceResolver) fallback(ctx context.Context, req dto.PriceRequest, asOf time.Time) *model.ItemPrice {
	day := model.Day(asOf)
	entries, err := r.repo.ItemPrices(ctx, store.Where(
		store.Eq("item_code", req.Item),
		store.Eq("price_list", req.PriceList),
		store.Eq("selling", true),
		store.Gt("price_list_rate", decimal.Zero),
	).
		Or(store.IsNull("valid_from"), store.Lte("valid_from", day)).
		Or(store.IsNull("valid_upto"), store.Gte("valid_upto", day)))
	if err != nil {
		r.logger.Error("fallback price lookup failed",
			zap.String("item_code", req.Item),
			zap.String("price_list", req.PriceList),
			zap.Error(err),
		)
		return nil
	}

	candidates := entries[:0:0]
	for _, e := range entries {
		if e.ActiveAt(asOf) && e.Rate.IsPositive() {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	rank(candidates, false)
	return &candidates[0]
}

// conversionRate returns the price list → company currency rate, or 1 when
// no conversion applies or the lookup fails.
func (r *priceResolver) conversionRate(ctx context.Context, req dto.PriceRequest, plCurrency string, asOf time.Time) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if req.Company == "" || plCurrency == "" || r.rates == nil {
		return one
	}

	company, err := r.repo.Company(ctx, req.Company)
	if err != nil {
		r.logger.Warn("company lookup failed, assuming same currency", zap.String("company", req.Company), zap.Error(err))
		return one
	}
	if company == nil || company.DefaultCurrency == "" || company.DefaultCurrency == plCurrency {
		return one
	}

	rate, err := r.rates.Rate(ctx, plCurrency, company.DefaultCurrency, asOf)
	if err != nil || !rate.IsPositive() {
		r.logger.Warn("exchange rate unavailable, using 1",
			zap.String("from", plCurrency),
			zap.String("to", company.DefaultCurrency),
			zap.Error(err),
		)
		r.publisher.Publish(ctx, events.Event{
			Type: events.TypeExchangeRateError,
			Key:  plCurrency + ":" + company.DefaultCurrency,
			Payload: map[string]interface{}{
				"from": plCurrency,
				"to":   company.DefaultCurrency,
				"date": model.Day(asOf).Format("2006-01-02"),
			},
		})
		return one
	}
	return rate
}

func (r *priceResolver) convert(v, rate decimal.Decimal) decimal.Decimal {
	return v.Mul(rate).Round(r.cfg.Precision)
}

// byUOM keeps the first non-empty tier: requested UOM, stock UOM, then
// entries without a UOM.
func byUOM(entries []model.ItemPrice, requested, stock string) []model.ItemPrice {
	tiers := []string{requested, stock}
	for _, uom := range tiers {
		if uom == "" {
			continue
		}
		var out []model.ItemPrice
		for _, e := range entries {
			if e.UOM != nil && *e.UOM == uom {
				out = append(out, e)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	var out []model.ItemPrice
	for _, e := range entries {
		if e.UOM == nil || *e.UOM == "" {
			out = append(out, e)
		}
	}
	return out
}

func byCurrency(entries []model.ItemPrice, currency string) []model.ItemPrice {
	var out []model.ItemPrice
	for _, e := range entries {
		if e.Currency == currency {
			out = append(out, e)
		}
	}
	return out
}

// rank orders entries best first: customer-scoped before generic (when
// scoped is set), then latest valid_from with an open bound counting as
// earliest, then latest modification, then name.
func rank(entries []model.ItemPrice, scoped bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if scoped && a.CustomerScoped() != b.CustomerScoped() {
			return a.CustomerScoped()
		}
		af, bf := validFrom(a), validFrom(b)
		if !af.Equal(bf) {
			return af.After(bf)
		}
		if !a.Modified.Equal(b.Modified) {
			return a.Modified.After(b.Modified)
		}
		return a.Name < b.Name
	})
}

func validFrom(p model.ItemPrice) time.Time {
	if p.ValidFrom == nil {
		return time.Time{}
	}
	return *p.ValidFrom
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
