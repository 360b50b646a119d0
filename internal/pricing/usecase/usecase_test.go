package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/store/memory"
	st "github.com/fekuna/omnipos-catalog-service/internal/store/storetest"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func price(name, item, currency, rate string, from, upto *time.Time, customer *string) model.ItemPrice {
	return model.ItemPrice{
		BaseModel: st.Base(name, st.Date(2024, 1, 1)),
		Item:      item,
		PriceList: "Retail",
		Currency:  currency,
		Rate:      st.Dec(rate),
		ValidFrom: from,
		ValidUpto: upto,
		Customer:  customer,
		Selling:   true,
	}
}

func newResolver(data memory.Data, pub events.Publisher) *priceResolver {
	repo := memory.New(data)
	return NewPriceResolver(repo, NewStoreExchangeRates(repo), pub, Config{Precision: 2}, logger.NewNop()).(*priceResolver)
}

var asOf = st.Date(2024, 6, 1)

func TestResolveCustomerScopedWins(t *testing.T) {
	r := newResolver(memory.Data{
		PriceLists: []model.PriceList{{BaseModel: st.Base("Retail", asOf), Currency: "USD", Selling: true, Enabled: true}},
		ItemPrices: []model.ItemPrice{
			price("generic", "A100", "USD", "10", st.DatePtr(2024, 1, 1), nil, nil),
			price("c1", "A100", "USD", "8", st.DatePtr(2024, 1, 1), nil, st.Str("C1")),
		},
	}, nil)

	tests := []struct {
		customer string
		want     string
		entry    string
	}{
		{"C1", "8", "c1"},
		{"C2", "10", "generic"},
		{"", "10", "generic"},
	}
	for _, tt := range tests {
		res := r.Resolve(context.Background(), dto.PriceRequest{
			Item: "A100", PriceList: "Retail", Currency: "USD", Customer: tt.customer, AsOf: asOf,
		})
		if !res.Rate.Equal(st.Dec(tt.want)) || res.PriceEntry != tt.entry {
			t.Errorf("customer %q: got rate %s (%s), want %s (%s)", tt.customer, res.Rate, res.PriceEntry, tt.want, tt.entry)
		}
		if !res.Found || res.FallbackUsed {
			t.Errorf("customer %q: expected primary hit, got %+v", tt.customer, res)
		}
		if res.Currency != "USD" {
			t.Errorf("currency: got %q", res.Currency)
		}
	}
}

func TestResolveCustomerScopeBeatsUOMTier(t *testing.T) {
	generic := price("generic", "A100", "USD", "10", st.DatePtr(2024, 1, 1), nil, nil)
	generic.UOM = st.Str("Nos")
	scoped := price("c1", "A100", "USD", "8", st.DatePtr(2024, 1, 1), nil, st.Str("C1"))
	boxOnly := price("c1-box", "A100", "USD", "90", st.DatePtr(2024, 1, 1), nil, st.Str("C2"))
	boxOnly.UOM = st.Str("Box")

	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{generic, scoped, boxOnly}}, nil)

	res := r.Resolve(context.Background(), dto.PriceRequest{
		Item: "A100", PriceList: "Retail", Currency: "USD", Customer: "C1", StockUOM: "Nos", AsOf: asOf,
	})
	if res.PriceEntry != "c1" || !res.Rate.Equal(st.Dec("8")) {
		t.Errorf("C1: got %s at %s, want c1 at 8", res.PriceEntry, res.Rate)
	}

	// a scoped entry that fits no unit tier leaves the generic tiers in play
	res = r.Resolve(context.Background(), dto.PriceRequest{
		Item: "A100", PriceList: "Retail", Currency: "USD", Customer: "C2", StockUOM: "Nos", AsOf: asOf,
	})
	if res.PriceEntry != "generic" || res.FallbackUsed {
		t.Errorf("C2: got %s (fallback %v), want generic", res.PriceEntry, res.FallbackUsed)
	}
}

func TestResolveLatestValidFromWins(t *testing.T) {
	older := price("older", "A100", "USD", "10", st.DatePtr(2024, 1, 1), nil, nil)
	newer := price("newer", "A100", "USD", "12", st.DatePtr(2024, 3, 1), nil, nil)
	open := price("open", "A100", "USD", "9", nil, nil, nil)

	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{open, newer, older}}, nil)
	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", Currency: "USD", AsOf: asOf})
	if res.PriceEntry != "newer" || !res.Rate.Equal(st.Dec("12")) {
		t.Fatalf("got %s at %s, want newer at 12", res.PriceEntry, res.Rate)
	}
}

func TestResolveModifiedBreaksTies(t *testing.T) {
	a := price("a", "A100", "USD", "10", st.DatePtr(2024, 1, 1), nil, nil)
	b := price("b", "A100", "USD", "11", st.DatePtr(2024, 1, 1), nil, nil)
	b.Modified = st.Date(2024, 2, 1)

	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{a, b}}, nil)
	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", AsOf: asOf})
	if res.PriceEntry != "b" {
		t.Fatalf("got %s, want b", res.PriceEntry)
	}
}

func TestResolveExpiredEntryExcluded(t *testing.T) {
	expired := price("expired", "A100", "USD", "10", st.DatePtr(2023, 1, 1), st.DatePtr(2024, 5, 31), nil)
	future := price("future", "A100", "USD", "15", st.DatePtr(2024, 7, 1), nil, nil)

	pub := &recordingPublisher{}
	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{expired, future}}, pub)
	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", Currency: "USD", AsOf: asOf})

	if res.Found || !res.Rate.IsZero() || res.FallbackUsed {
		t.Fatalf("expected no price, got %+v", res)
	}
	if len(pub.events) != 0 {
		t.Errorf("no fallback event expected, got %d", len(pub.events))
	}

	// the last valid day is still active
	res = r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", AsOf: st.Date(2024, 5, 31)})
	if res.PriceEntry != "expired" {
		t.Errorf("inclusive upper bound: got %q", res.PriceEntry)
	}
}

func TestResolveFallbackIgnoresCustomerScope(t *testing.T) {
	zero := price("zero", "A100", "USD", "0", st.DatePtr(2024, 1, 1), nil, nil)
	other := price("other", "A100", "USD", "7.5", st.DatePtr(2024, 2, 1), nil, st.Str("C9"))

	pub := &recordingPublisher{}
	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{zero, other}}, pub)
	res := r.Resolve(context.Background(), dto.PriceRequest{
		Item: "A100", PriceList: "Retail", Currency: "USD", Customer: "C1", AsOf: asOf, Qty: st.Dec("2"),
	})

	if !res.FallbackUsed || !res.Found {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if !res.Rate.Equal(st.Dec("7.5")) || !res.Amount.Equal(st.Dec("15")) {
		t.Errorf("rate/amount: got %s/%s", res.Rate, res.Amount)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeFallbackPriceUsed {
		t.Errorf("expected one fallback event, got %+v", pub.events)
	}
}

func TestResolveUOMPreference(t *testing.T) {
	box := price("box", "A100", "USD", "55", nil, nil, nil)
	box.UOM = st.Str("Box")
	nos := price("nos", "A100", "USD", "5", nil, nil, nil)
	nos.UOM = st.Str("Nos")
	bare := price("bare", "A100", "USD", "6", st.DatePtr(2024, 5, 1), nil, nil)

	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{box, nos, bare}}, nil)

	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", StockUOM: "Nos", AsOf: asOf})
	if res.PriceEntry != "nos" {
		t.Errorf("stock uom tier: got %q", res.PriceEntry)
	}
	res = r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", UOM: "Box", StockUOM: "Nos", AsOf: asOf})
	if res.PriceEntry != "box" {
		t.Errorf("requested uom tier: got %q", res.PriceEntry)
	}
	res = r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", StockUOM: "Kg", AsOf: asOf})
	if res.PriceEntry != "bare" {
		t.Errorf("uom-less tier: got %q", res.PriceEntry)
	}
}

func TestResolveCurrencyFallsBackToPriceList(t *testing.T) {
	r := newResolver(memory.Data{
		PriceLists: []model.PriceList{{BaseModel: st.Base("Retail", asOf), Currency: "EUR"}},
		ItemPrices: []model.ItemPrice{price("eur", "A100", "", "4", nil, nil, nil)},
	}, nil)

	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", Currency: "USD", AsOf: asOf})
	if res.Currency != "EUR" || res.PriceListCurrency != "EUR" {
		t.Errorf("currency: got %q / %q", res.Currency, res.PriceListCurrency)
	}
}

func TestResolveMultiCurrencyConversion(t *testing.T) {
	data := memory.Data{
		PriceLists: []model.PriceList{{BaseModel: st.Base("Retail", asOf), Currency: "USD"}},
		Companies:  []model.Company{{BaseModel: st.Base("ACME", asOf), DefaultCurrency: "IDR"}},
		ExchangeRates: []model.CurrencyExchange{
			{BaseModel: st.Base("old", asOf), FromCurrency: "USD", ToCurrency: "IDR", Date: st.Date(2024, 1, 1), Rate: st.Dec("15000")},
			{BaseModel: st.Base("new", asOf), FromCurrency: "USD", ToCurrency: "IDR", Date: st.Date(2024, 5, 1), Rate: st.Dec("16250.5")},
		},
		ItemPrices: []model.ItemPrice{price("p", "A100", "USD", "2.333", nil, nil, nil)},
	}
	r := newResolver(data, nil)

	res := r.Resolve(context.Background(), dto.PriceRequest{
		Item: "A100", PriceList: "Retail", Currency: "USD", Company: "ACME", AsOf: asOf, Qty: st.Dec("3"),
	})

	if !res.ConversionRate.Equal(st.Dec("16250.5")) {
		t.Fatalf("conversion rate: got %s", res.ConversionRate)
	}
	// 2.333 × 16250.5 = 37912.4165
	if !res.BaseRate.Equal(st.Dec("37912.42")) || !res.BasePriceListRate.Equal(res.BaseRate) {
		t.Errorf("base rate: got %s", res.BaseRate)
	}
	// amount 2.333 × 3 = 6.999 → 7.00; base 7 × 16250.5
	if !res.Amount.Equal(st.Dec("7")) || !res.BaseAmount.Equal(st.Dec("113753.5")) {
		t.Errorf("amounts: got %s / %s", res.Amount, res.BaseAmount)
	}
}

func TestResolveInverseExchangeRate(t *testing.T) {
	repo := memory.New(memory.Data{ExchangeRates: []model.CurrencyExchange{
		{BaseModel: st.Base("inv", asOf), FromCurrency: "EUR", ToCurrency: "USD", Date: st.Date(2024, 1, 1), Rate: st.Dec("2")},
	}})
	rate, err := NewStoreExchangeRates(repo).Rate(context.Background(), "USD", "EUR", asOf)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if !rate.Equal(st.Dec("0.5")) {
		t.Errorf("got %s", rate)
	}
}

func TestResolveExchangeRateErrorUsesOne(t *testing.T) {
	repo := st.Fail(memory.New(memory.Data{
		PriceLists: []model.PriceList{{BaseModel: st.Base("Retail", asOf), Currency: "USD"}},
		Companies:  []model.Company{{BaseModel: st.Base("ACME", asOf), DefaultCurrency: "IDR"}},
		ItemPrices: []model.ItemPrice{price("p", "A100", "USD", "3", nil, nil, nil)},
	}), "ExchangeRates")

	pub := &recordingPublisher{}
	r := NewPriceResolver(repo, NewStoreExchangeRates(repo), pub, Config{Precision: 2}, logger.NewNop())
	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", Company: "ACME", AsOf: asOf})

	if !res.ConversionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("conversion: got %s", res.ConversionRate)
	}
	if !res.BaseRate.Equal(st.Dec("3")) || !res.Rate.Equal(st.Dec("3")) {
		t.Errorf("rates: got %s / %s", res.Rate, res.BaseRate)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeExchangeRateError {
		t.Errorf("expected exchange rate diagnostic, got %+v", pub.events)
	}
}

func TestResolveStoreFailureDegradesToZero(t *testing.T) {
	repo := st.Fail(memory.New(memory.Data{}), "ItemPrices")
	r := NewPriceResolver(repo, nil, nil, Config{Precision: 2}, logger.NewNop())
	res := r.Resolve(context.Background(), dto.PriceRequest{Item: "A100", PriceList: "Retail", Currency: "USD", AsOf: asOf})
	if res.Found || !res.Rate.IsZero() || res.Currency != "USD" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveRoundsLineAmount(t *testing.T) {
	r := newResolver(memory.Data{ItemPrices: []model.ItemPrice{
		price("odd", "A100", "USD", "1.115", st.DatePtr(2024, 1, 1), nil, nil),
	}}, nil)
	res := r.Resolve(context.Background(), dto.PriceRequest{
		Item: "A100", PriceList: "Retail", Currency: "USD", AsOf: asOf, Qty: st.Dec("3"),
	})
	if !res.Found || !res.Amount.Equal(res.LineAmount(st.Dec("3"), 2)) || !res.Amount.Equal(st.Dec("3.35")) {
		t.Errorf("amount: got %s", res.Amount)
	}
}

func TestLineAmount(t *testing.T) {
	res := dto.PriceResult{Rate: st.Dec("1.115")}
	if got := res.LineAmount(st.Dec("3"), 2); !got.Equal(st.Dec("3.35")) {
		t.Errorf("got %s", got)
	}
}
