package model

import "github.com/shopspring/decimal"

type Item struct {
	BaseModel `yaml:",inline"`
	ItemName     string          `db:"item_name" json:"item_name" yaml:"item_name"`
	Description  string          `db:"description" json:"description" yaml:"description"`
	StockUOM     string          `db:"stock_uom" json:"stock_uom" yaml:"stock_uom"`
	ItemGroup    string          `db:"item_group" json:"item_group" yaml:"item_group"`
	VariantOf    *string         `db:"variant_of" json:"variant_of" yaml:"variant_of"` // Nullable
	Brand        string          `db:"brand" json:"brand" yaml:"brand"`
	Image        string          `db:"image" json:"image" yaml:"image"`
	MaxDiscount  decimal.Decimal `db:"max_discount" json:"max_discount" yaml:"max_discount"`
	IsStockItem  bool            `db:"is_stock_item" json:"is_stock_item" yaml:"is_stock_item"`
	IsSalesItem  bool            `db:"is_sales_item" json:"is_sales_item" yaml:"is_sales_item"`
	IsFixedAsset bool            `db:"is_fixed_asset" json:"is_fixed_asset" yaml:"is_fixed_asset"`
	HasVariants  bool            `db:"has_variants" json:"has_variants" yaml:"has_variants"`
	HasBatchNo   bool            `db:"has_batch_no" json:"has_batch_no" yaml:"has_batch_no"`
	HasSerialNo  bool            `db:"has_serial_no" json:"has_serial_no" yaml:"has_serial_no"`
	Disabled     bool            `db:"disabled" json:"disabled" yaml:"disabled"`
}

type ItemBarcode struct {
	BaseModel `yaml:",inline"`
	Item    string  `db:"parent" json:"item" yaml:"item"`
	Barcode string  `db:"barcode" json:"barcode" yaml:"barcode"`
	UOM     *string `db:"uom" json:"uom" yaml:"uom"` // Nullable, falls back to the item stock UOM
}

type UOMConversion struct {
	BaseModel `yaml:",inline"`
	Item             string          `db:"parent" json:"item" yaml:"item"`
	UOM              string          `db:"uom" json:"uom" yaml:"uom"`
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversion_factor" yaml:"conversion_factor"`
}

type VariantAttribute struct {
	BaseModel `yaml:",inline"`
	Item      string `db:"parent" json:"item" yaml:"item"`
	Attribute string `db:"attribute" json:"attribute" yaml:"attribute"`
	Value     string `db:"attribute_value" json:"attribute_value" yaml:"attribute_value"`
	Idx       int    `db:"idx" json:"idx" yaml:"idx"`
}

type ItemGroup struct {
	BaseModel `yaml:",inline"`
	ParentItemGroup *string `db:"parent_item_group" json:"parent_item_group" yaml:"parent_item_group"`
	IsGroup         bool    `db:"is_group" json:"is_group" yaml:"is_group"`
}
