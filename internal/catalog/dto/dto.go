package dto

import (
	"time"

	availdto "github.com/fekuna/omnipos-catalog-service/internal/availability/dto"
	pricedto "github.com/fekuna/omnipos-catalog-service/internal/pricing/dto"
	"github.com/shopspring/decimal"
)

type Barcode struct {
	Barcode string `json:"barcode"`
	UOM     string `json:"uom"`
}

type UOM struct {
	UOM              string          `json:"uom"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
}

// Attribute is a variant's attribute value, or a template's attribute
// name with an empty Value.
type Attribute struct {
	Attribute string `json:"attribute"`
	Value     string `json:"attribute_value,omitempty"`
}

// CatalogRow is one sellable item as the terminal caches it.
type CatalogRow struct {
	ItemCode    string          `json:"item_code"`
	ItemName    string          `json:"item_name"`
	Description string          `json:"description"`
	ItemGroup   string          `json:"item_group"`
	StockUOM    string          `json:"stock_uom"`
	VariantOf   string          `json:"variant_of,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Image       string          `json:"image,omitempty"`
	IsStockItem bool            `json:"is_stock_item"`
	HasVariants bool            `json:"has_variants"`
	HasBatchNo  bool            `json:"has_batch_no"`
	HasSerialNo bool            `json:"has_serial_no"`
	MaxDiscount decimal.Decimal `json:"max_discount"`
	Modified    time.Time       `json:"modified"`

	Rate              decimal.Decimal `json:"rate"`
	PriceListRate     decimal.Decimal `json:"price_list_rate"`
	Currency          string          `json:"currency"`
	PriceListCurrency string          `json:"price_list_currency"`
	FallbackPriceUsed bool            `json:"fallback_price_used"`

	ActualQty decimal.Decimal `json:"actual_qty"`

	Barcodes   []Barcode             `json:"item_barcode"`
	UOMs       []UOM                 `json:"item_uoms"`
	Batches    []availdto.BatchInfo  `json:"batch_no_data"`
	Serials    []availdto.SerialInfo `json:"serial_no_data"`
	Attributes []Attribute           `json:"attributes,omitempty"`
}

// ItemGroup is a leaf group a terminal can filter its catalog by.
type ItemGroup struct {
	Name   string `json:"name"`
	Parent string `json:"parent_item_group,omitempty"`
}

type VariantsResult struct {
	Items []CatalogRow `json:"items"`
	// AttributesMeta maps each attribute to its sorted distinct values.
	AttributesMeta map[string][]string `json:"attributes_meta"`
}

type ItemDetail struct {
	CatalogRow
	Price            pricedto.PriceResult `json:"price"`
	Qty              decimal.Decimal      `json:"qty"`
	UOM              string               `json:"uom"`
	ConversionFactor decimal.Decimal      `json:"conversion_factor"`
	StockQty         decimal.Decimal      `json:"stock_qty"`
}

type BarcodeHit struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Barcode  string          `json:"barcode"`
	Rate     decimal.Decimal `json:"rate"`
	UOM      string          `json:"uom"`
	Currency string          `json:"currency"`
}

type IdentifierKind string

const (
	KindBarcode IdentifierKind = "barcode"
	KindBatch   IdentifierKind = "batch_no"
	KindSerial  IdentifierKind = "serial_no"
)

// IdentifierHit reports which scanned identifier resolved to an item.
type IdentifierHit struct {
	ItemCode string         `json:"item_code"`
	Kind     IdentifierKind `json:"kind"`
	Value    string         `json:"value"`
	UOM      string         `json:"uom,omitempty"`
}
