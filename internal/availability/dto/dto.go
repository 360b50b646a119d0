package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type BatchInfo struct {
	BatchNo           string           `json:"batch_no"`
	Qty               decimal.Decimal  `json:"batch_qty"`
	ExpiryDate        *time.Time       `json:"expiry_date"`
	ManufacturingDate *time.Time       `json:"manufacturing_date"`
	BatchPrice        *decimal.Decimal `json:"batch_price"`
}

type SerialInfo struct {
	SerialNo  string  `json:"serial_no"`
	Warehouse string  `json:"warehouse"`
	BatchNo   *string `json:"batch_no,omitempty"`
}
