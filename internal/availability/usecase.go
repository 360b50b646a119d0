package availability

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/availability/dto"
	"github.com/shopspring/decimal"
)

// Resolver answers stock questions for (item, warehouse). Store failures
// degrade to zero or empty results and are logged, never returned.
type Resolver interface {
	Quantity(ctx context.Context, item, warehouse string) decimal.Decimal
	Batches(ctx context.Context, item, warehouse string, asOf time.Time) []dto.BatchInfo
	Serials(ctx context.Context, item, warehouse string) []dto.SerialInfo
}
