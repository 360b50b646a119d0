package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/shopspring/decimal"
)

var ErrRateNotFound = errors.New("exchange rate not found")

// Resolver prices one item. It never fails: degraded outcomes are reported
// through PriceResult.Found and PriceResult.FallbackUsed.
type Resolver interface {
	Resolve(ctx context.Context, req dto.PriceRequest) dto.PriceResult
}

// ExchangeRates looks up the rate converting one unit of from into to.
type ExchangeRates interface {
	Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}
