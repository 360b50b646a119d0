package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceRequest struct {
	Item      string
	PriceList string
	Currency  string // requested currency, empty accepts any
	Customer  string
	UOM       string
	StockUOM  string
	Company   string
	AsOf      time.Time
	Qty       decimal.Decimal // zero means 1
}

type PriceResult struct {
	PriceListRate     decimal.Decimal `json:"price_list_rate"`
	Rate              decimal.Decimal `json:"rate"`
	Amount            decimal.Decimal `json:"amount"`
	BasePriceListRate decimal.Decimal `json:"base_price_list_rate"`
	BaseRate          decimal.Decimal `json:"base_rate"`
	BaseAmount        decimal.Decimal `json:"base_amount"`
	Currency          string          `json:"currency"`
	PriceListCurrency string          `json:"price_list_currency"`
	ConversionRate    decimal.Decimal `json:"conversion_rate"`
	PriceEntry        string          `json:"price_entry,omitempty"`
	FallbackUsed      bool            `json:"fallback_price_used"`
	Found             bool            `json:"found"`
}

// LineAmount is Rate × qty rounded to places.
func (r PriceResult) LineAmount(qty decimal.Decimal, places int32) decimal.Decimal {
	return r.Rate.Mul(qty).Round(places)
}
