package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/availability"
	"github.com/fekuna/omnipos-catalog-service/internal/availability/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type availabilityResolver struct {
	repo   store.Repository
	logger logger.ZapLogger
}

func NewAvailabilityResolver(repo store.Repository, log logger.ZapLogger) availability.Resolver {
	return &availabilityResolver{
		repo:   repo,
		logger: log,
	}
}

// Quantity is qty_after_transaction of the newest non-cancelled ledger entry.
func (r *availabilityResolver) Quantity(ctx context.Context, item, warehouse string) decimal.Decimal {
	if item == "" || warehouse == "" {
		return decimal.Zero
	}

	entries, err := r.repo.LedgerEntries(ctx, store.Where(
		store.Eq("item_code", item),
		store.Eq("warehouse", warehouse),
		store.Eq("is_cancelled", false),
	).Sort(
		store.Desc("posting_date"),
		store.Desc("posting_time"),
		store.Desc("creation"),
	).Page(1, 0))
	if err != nil {
		r.logger.Error("stock quantity lookup failed",
			zap.String("item_code", item),
			zap.String("warehouse", warehouse),
			zap.Error(err),
		)
		return decimal.Zero
	}
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[0].QtyAfterTransaction
}

// Batches returns eligible lots, soonest expiry first. With a warehouse the
// quantity is the ledger balance there, otherwise the batch master quantity.
func (r *availabilityResolver) Batches(ctx context.Context, item, warehouse string, asOf time.Time) []dto.BatchInfo {
	if item == "" {
		return []dto.BatchInfo{}
	}
	today := model.Day(asOf)

	rows, err := r.repo.Batches(ctx, store.Where(
		store.Eq("item", item),
		store.Eq("disabled", false),
	).Or(store.IsNull("expiry_date"), store.Gt("expiry_date", today)))
	if err != nil {
		r.logger.Error("batch lookup failed", zap.String("item_code", item), zap.Error(err))
		return []dto.BatchInfo{}
	}

	var balances map[string]decimal.Decimal
	if warehouse != "" {
		bals, err := r.repo.BatchBalances(ctx, item, warehouse)
		if err != nil {
			r.logger.Error("batch balance lookup failed",
				zap.String("item_code", item),
				zap.String("warehouse", warehouse),
				zap.Error(err),
			)
			return []dto.BatchInfo{}
		}
		balances = make(map[string]decimal.Decimal, len(bals))
		for _, b := range bals {
			balances[b.BatchNo] = b.Qty
		}
	}

	out := make([]dto.BatchInfo, 0, len(rows))
	for _, b := range rows {
		qty := b.BatchQty
		if balances != nil {
			qty = balances[b.Name]
		}
		if !eligible(b, qty, today) {
			continue
		}
		out = append(out, dto.BatchInfo{
			BatchNo:           b.Name,
			Qty:               qty,
			ExpiryDate:        b.ExpiryDate,
			ManufacturingDate: b.ManufacturingDate,
			BatchPrice:        b.BatchPrice,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpiryDate, out[j].ExpiryDate
		switch {
		case a == nil && b == nil:
			return out[i].BatchNo < out[j].BatchNo
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].BatchNo < out[j].BatchNo
		}
		return a.Before(*b)
	})
	return out
}

func eligible(b model.Batch, qty decimal.Decimal, today time.Time) bool {
	if b.Disabled || !qty.IsPositive() {
		return false
	}
	return b.ExpiryDate == nil || model.Day(*b.ExpiryDate).After(today)
}

func (r *availabilityResolver) Serials(ctx context.Context, item, warehouse string) []dto.SerialInfo {
	if item == "" {
		return []dto.SerialInfo{}
	}

	q := store.Where(
		store.Eq("item_code", item),
		store.Eq("status", model.SerialStatusActive),
	)
	if warehouse != "" {
		q = q.And(store.Eq("warehouse", warehouse))
	}

	rows, err := r.repo.SerialNos(ctx, q.Sort(store.Asc("name")))
	if err != nil {
		r.logger.Error("serial lookup failed", zap.String("item_code", item), zap.Error(err))
		return []dto.SerialInfo{}
	}

	out := make([]dto.SerialInfo, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.SerialInfo{SerialNo: s.Name, Warehouse: s.Warehouse, BatchNo: s.BatchNo})
	}
	return out
}
