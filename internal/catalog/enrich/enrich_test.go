package enrich

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	availdto "github.com/fekuna/omnipos-catalog-service/internal/availability/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	pricedto "github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/store/memory"
	st "github.com/fekuna/omnipos-catalog-service/internal/store/storetest"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type fakePrices struct {
	calls int32
}

func (f *fakePrices) Resolve(context.Context, pricedto.PriceRequest) pricedto.PriceResult {
	atomic.AddInt32(&f.calls, 1)
	return pricedto.PriceResult{Rate: st.Dec("2.5"), PriceListRate: st.Dec("2.5"), Currency: "USD", Found: true}
}

type fakeStock struct {
	quantityCalls int32
}

func (f *fakeStock) Quantity(context.Context, string, string) decimal.Decimal {
	atomic.AddInt32(&f.quantityCalls, 1)
	return st.Dec("-2")
}

func (f *fakeStock) Batches(context.Context, string, string, time.Time) []availdto.BatchInfo {
	return []availdto.BatchInfo{{BatchNo: "LOT1", Qty: st.Dec("4")}}
}

func (f *fakeStock) Serials(_ context.Context, item, _ string) []availdto.SerialInfo {
	out := make([]availdto.SerialInfo, 5)
	for i := range out {
		out[i] = availdto.SerialInfo{SerialNo: item + "-SN" + string(rune('1'+i))}
	}
	return out
}

func item(code string, mut func(*model.Item)) model.Item {
	it := model.Item{BaseModel: st.Base(code, st.Date(2024, 6, 1)), ItemName: code, StockUOM: "Nos"}
	if mut != nil {
		mut(&it)
	}
	return it
}

func TestRowsPreserveOrderAndUnits(t *testing.T) {
	repo := memory.New(memory.Data{
		ItemBarcodes: []model.ItemBarcode{
			{Item: "A100", Barcode: "111"},
			{Item: "A100", Barcode: "222", UOM: st.Str("Box")},
		},
		UOMConversions: []model.UOMConversion{
			{Item: "A100", UOM: "Box", ConversionFactor: st.Dec("12")},
		},
	})
	stock := &fakeStock{}
	e := New(repo, &fakePrices{}, stock, 4, logger.NewNop())

	items := []model.Item{item("C300", nil), item("A100", nil), item("B200", nil)}
	rows := e.Rows(context.Background(), items, Options{PriceList: "Retail"})

	for i, want := range []string{"C300", "A100", "B200"} {
		if rows[i].ItemCode != want {
			t.Fatalf("row %d: got %s, want %s", i, rows[i].ItemCode, want)
		}
		if !rows[i].Rate.Equal(st.Dec("2.5")) || rows[i].Currency != "USD" {
			t.Errorf("%s: price not applied: %+v", want, rows[i])
		}
	}

	a := rows[1]
	if len(a.Barcodes) != 2 || a.Barcodes[0].UOM != "Nos" || a.Barcodes[1].UOM != "Box" {
		t.Errorf("barcodes: %+v", a.Barcodes)
	}
	if len(a.UOMs) != 2 || a.UOMs[0].UOM != "Nos" || !a.UOMs[0].ConversionFactor.Equal(decimal.NewFromInt(1)) {
		t.Errorf("stock unit must lead with factor 1: %+v", a.UOMs)
	}
	if f := ConversionFactor(a.UOMs, "Box"); !f.Equal(st.Dec("12")) {
		t.Errorf("Box factor: got %s", f)
	}
	if f := ConversionFactor(a.UOMs, "Pallet"); !f.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unknown unit factor: got %s", f)
	}
	if stock.quantityCalls != 0 {
		t.Errorf("quantity resolved without a warehouse")
	}
	if a.Batches == nil || a.Serials == nil {
		t.Errorf("lot and serial lists must be non-nil")
	}
}

func TestRowsAvailability(t *testing.T) {
	stock := &fakeStock{}
	e := New(memory.New(memory.Data{}), &fakePrices{}, stock, 2, logger.NewNop())

	items := []model.Item{
		item("S1", func(it *model.Item) { it.IsStockItem = true; it.HasSerialNo = true; it.HasBatchNo = true }),
		item("N1", nil),
	}
	rows := e.Rows(context.Background(), items, Options{Warehouse: "WH1", Quantity: true, SerialCap: 3})

	s := rows[0]
	if !s.ActualQty.Equal(st.Dec("-2")) {
		t.Errorf("negative quantity must pass through, got %s", s.ActualQty)
	}
	if len(s.Batches) != 1 || s.Batches[0].BatchNo != "LOT1" {
		t.Errorf("batches: %+v", s.Batches)
	}
	if len(s.Serials) != 3 {
		t.Errorf("serial cap: got %d", len(s.Serials))
	}

	n := rows[1]
	if !n.ActualQty.IsZero() || len(n.Batches) != 0 || len(n.Serials) != 0 {
		t.Errorf("untracked non-stock item: %+v", n)
	}
	if stock.quantityCalls != 1 {
		t.Errorf("quantity calls: got %d, want 1", stock.quantityCalls)
	}
}

func TestRowsLookupFailureDegrades(t *testing.T) {
	repo := st.Fail(memory.New(memory.Data{
		ItemBarcodes: []model.ItemBarcode{{Item: "A100", Barcode: "111"}},
	}), "ItemBarcodes", "UOMConversions")
	e := New(repo, &fakePrices{}, &fakeStock{}, 1, logger.NewNop())

	rows := e.Rows(context.Background(), []model.Item{item("A100", nil)}, Options{})
	if len(rows[0].Barcodes) != 0 {
		t.Errorf("barcodes: %+v", rows[0].Barcodes)
	}
	if len(rows[0].UOMs) != 1 || rows[0].UOMs[0].UOM != "Nos" {
		t.Errorf("uoms: %+v", rows[0].UOMs)
	}
}

func TestChunksDedupes(t *testing.T) {
	codes := make([]string, 0, 1200)
	for i := 0; i < 1100; i++ {
		codes = append(codes, string(rune(0x4e00+i)))
	}
	codes = append(codes, codes[:100]...)
	got := chunks(codes)
	if len(got) != 3 || len(got[0]) != inChunk || len(got[2]) != 100 {
		t.Fatalf("chunk sizes: %d chunks", len(got))
	}
}

func TestRowsSkipPrice(t *testing.T) {
	prices := &fakePrices{}
	e := New(memory.New(memory.Data{}), prices, &fakeStock{}, 2, logger.NewNop())

	rows := e.Rows(context.Background(), []model.Item{item("A100", nil), item("B200", nil)}, Options{SkipPrice: true})
	if prices.calls != 0 {
		t.Errorf("resolve calls: got %d, want 0", prices.calls)
	}
	if !rows[0].Rate.IsZero() || rows[0].Currency != "" {
		t.Errorf("row priced anyway: %+v", rows[0])
	}
}
