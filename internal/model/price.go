package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemPrice is one row of a price list. A nil or empty Customer marks a
// generic entry; ValidFrom/ValidUpto may each be open.
type ItemPrice struct {
	BaseModel `yaml:",inline"`
	Item      string          `db:"item_code" json:"item_code" yaml:"item_code"`
	PriceList string          `db:"price_list" json:"price_list" yaml:"price_list"`
	Currency  string          `db:"currency" json:"currency" yaml:"currency"`
	Rate      decimal.Decimal `db:"price_list_rate" json:"price_list_rate" yaml:"price_list_rate"`
	UOM       *string         `db:"uom" json:"uom" yaml:"uom"`
	Customer  *string         `db:"customer" json:"customer" yaml:"customer"`
	ValidFrom *time.Time      `db:"valid_from" json:"valid_from" yaml:"valid_from"`
	ValidUpto *time.Time      `db:"valid_upto" json:"valid_upto" yaml:"valid_upto"`
	Selling   bool            `db:"selling" json:"selling" yaml:"selling"`
	Buying    bool            `db:"buying" json:"buying" yaml:"buying"`
}

// CustomerScoped reports whether the entry is restricted to one customer.
func (p *ItemPrice) CustomerScoped() bool {
	return p.Customer != nil && *p.Customer != ""
}

// ActiveAt reports whether day falls inside the validity window.
// Bounds are compared at day granularity and are inclusive.
func (p *ItemPrice) ActiveAt(day time.Time) bool {
	d := Day(day)
	if p.ValidFrom != nil && Day(*p.ValidFrom).After(d) {
		return false
	}
	if p.ValidUpto != nil && Day(*p.ValidUpto).Before(d) {
		return false
	}
	return true
}

type PriceList struct {
	BaseModel `yaml:",inline"`
	Currency string `db:"currency" json:"currency" yaml:"currency"`
	Selling  bool   `db:"selling" json:"selling" yaml:"selling"`
	Enabled  bool   `db:"enabled" json:"enabled" yaml:"enabled"`
}

type Company struct {
	BaseModel `yaml:",inline"`
	DefaultCurrency string `db:"default_currency" json:"default_currency" yaml:"default_currency"`
}

type CurrencyExchange struct {
	BaseModel `yaml:",inline"`
	FromCurrency string          `db:"from_currency" json:"from_currency" yaml:"from_currency"`
	ToCurrency   string          `db:"to_currency" json:"to_currency" yaml:"to_currency"`
	Date         time.Time       `db:"date" json:"date" yaml:"date"`
	Rate         decimal.Decimal `db:"exchange_rate" json:"exchange_rate" yaml:"exchange_rate"`
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
