package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLedgerEntry is one append-only stock movement. QtyAfterTransaction is
// the running balance for (item, warehouse) after this entry.
type StockLedgerEntry struct {
	BaseModel `yaml:",inline"`
	Item                string          `db:"item_code" json:"item_code" yaml:"item_code"`
	Warehouse           string          `db:"warehouse" json:"warehouse" yaml:"warehouse"`
	PostingDate         time.Time       `db:"posting_date" json:"posting_date" yaml:"posting_date"`
	PostingTime         string          `db:"posting_time" json:"posting_time" yaml:"posting_time"` // HH:MM:SS
	Creation            time.Time       `db:"creation" json:"creation" yaml:"creation"`
	ActualQty           decimal.Decimal `db:"actual_qty" json:"actual_qty" yaml:"actual_qty"`
	QtyAfterTransaction decimal.Decimal `db:"qty_after_transaction" json:"qty_after_transaction" yaml:"qty_after_transaction"`
	BatchNo             *string         `db:"batch_no" json:"batch_no" yaml:"batch_no"`
	IsCancelled         bool            `db:"is_cancelled" json:"is_cancelled" yaml:"is_cancelled"`
}

type Batch struct {
	BaseModel `yaml:",inline"`
	Item              string           `db:"item" json:"item" yaml:"item"`
	BatchQty          decimal.Decimal  `db:"batch_qty" json:"batch_qty" yaml:"batch_qty"`
	ExpiryDate        *time.Time       `db:"expiry_date" json:"expiry_date" yaml:"expiry_date"`
	ManufacturingDate *time.Time       `db:"manufacturing_date" json:"manufacturing_date" yaml:"manufacturing_date"`
	BatchPrice        *decimal.Decimal `db:"batch_price" json:"batch_price" yaml:"batch_price"`
	Disabled          bool             `db:"disabled" json:"disabled" yaml:"disabled"`
}

// BatchBalance is the ledger-derived quantity of one batch in one warehouse.
type BatchBalance struct {
	BatchNo string          `db:"batch_no" json:"batch_no" yaml:"batch_no"`
	Qty     decimal.Decimal `db:"qty" json:"qty" yaml:"qty"`
}

type SerialNo struct {
	BaseModel `yaml:",inline"`
	Item      string  `db:"item_code" json:"item_code" yaml:"item_code"`
	Status    string  `db:"status" json:"status" yaml:"status"`
	Warehouse string  `db:"warehouse" json:"warehouse" yaml:"warehouse"`
	BatchNo   *string `db:"batch_no" json:"batch_no" yaml:"batch_no"`
}

const SerialStatusActive = "Active"
