package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type QueryInput struct {
	Profile       Profile     `json:"pos_profile"`
	PriceList     string      `json:"price_list"`
	ItemGroup     string      `json:"item_group"`
	SearchTerm    string      `json:"search_value"`
	Customer      string      `json:"customer"`
	Limit         OptionalInt `json:"limit"`
	Offset        OptionalInt `json:"offset"`
	ModifiedAfter string      `json:"modified_after"`
}

type GroupsInput struct {
	Profile Profile `json:"pos_profile"`
}

type VariantsInput struct {
	Profile   Profile `json:"pos_profile"`
	Parent    string  `json:"parent" validate:"required"`
	PriceList string  `json:"price_list"`
	Customer  string  `json:"customer"`
}

// DetailItem is the cart line a detail request is priced for.
type DetailItem struct {
	ItemCode string          `json:"item_code" validate:"required"`
	Qty      decimal.Decimal `json:"qty"`
	UOM      string          `json:"uom"`
	Customer string          `json:"customer"`
}

type DetailInput struct {
	Item      DetailItem `json:"item"`
	Warehouse string     `json:"warehouse"`
	PriceList string     `json:"price_list"`
	Company   string     `json:"company"`
	Currency  string     `json:"currency"`
	// AsOf overrides the pricing date; zero means now.
	AsOf time.Time `json:"posting_date"`
}

type BarcodeInput struct {
	PriceList string `json:"price_list"`
	Currency  string `json:"currency"`
	Barcode   string `json:"barcode" validate:"required"`
}

type IdentifierInput struct {
	Term           string `json:"search_value" validate:"required"`
	Warehouse      string `json:"warehouse"`
	SearchSerialNo bool   `json:"search_serial_no"`
}
