package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/shopspring/decimal"
)

// storeExchangeRates reads the latest currency exchange row on or before the
// requested date, trying the inverse pair when the direct one is missing.
type storeExchangeRates struct {
	repo store.Repository
}

func NewStoreExchangeRates(repo store.Repository) pricing.ExchangeRates {
	return &storeExchangeRates{repo: repo}
}

func (s *storeExchangeRates) Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	direct, err := s.latest(ctx, from, to, date)
	if err != nil {
		return decimal.Zero, err
	}
	if direct != nil && direct.Rate.IsPositive() {
		return direct.Rate, nil
	}

	inverse, err := s.latest(ctx, to, from, date)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse != nil && inverse.Rate.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse.Rate, 9), nil
	}

	return decimal.Zero, fmt.Errorf("%w: %s→%s on %s", pricing.ErrRateNotFound, from, to, date.Format("2006-01-02"))
}

func (s *storeExchangeRates) latest(ctx context.Context, from, to string, date time.Time) (*model.CurrencyExchange, error) {
	rows, err := s.repo.ExchangeRates(ctx, store.Where(
		store.Eq("from_currency", from),
		store.Eq("to_currency", to),
		store.Lte("date", model.Day(date)),
	).Sort(store.Desc("date"), store.Desc("modified")).Page(1, 0))
	if err != nil {
		return nil, fmt.Errorf("exchange rate %s→%s: %w", from, to, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
