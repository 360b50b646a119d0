package dto

import (
	"time"

	catdto "github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
)

// Change categories reported in ChangeSummary.Counts.
const (
	CategoryItems      = "items"
	CategoryPrices     = "prices"
	CategoryUOMs       = "uoms"
	CategoryBarcodes   = "barcodes"
	CategoryCustomers  = "customers"
	CategoryItemGroups = "item_groups"
	CategoryBatches    = "batches"
	CategorySerials    = "serials"
	CategoryStock      = "stock"
)

type ChangesInput struct {
	Profile   catdto.Profile `json:"pos_profile"`
	PriceList string         `json:"price_list"`
	// Warehouse overrides the profile warehouse for the stock scan.
	Warehouse string `json:"warehouse"`
	Cursor    string `json:"last_sync"`
}

type ChangedItem struct {
	ItemCode    string    `json:"item_code"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description"`
	Modified    time.Time `json:"modified"`
}

type Debug struct {
	PriceList   string         `json:"price_list"`
	Warehouse   string         `json:"warehouse"`
	CursorValid bool           `json:"cursor_valid"`
	Limits      map[string]int `json:"limits"`
}

type ChangeSummary struct {
	HasChanges       bool           `json:"has_changes"`
	Counts           map[string]int `json:"counts"`
	TotalItemChanges int            `json:"total_item_changes"`
	ChangedItems     []string       `json:"changed_items"`
	ItemDetails      []ChangedItem  `json:"item_details"`
	// Since is the effective lower bound; ServerTime is the cursor the
	// client should send next.
	Since      string `json:"since"`
	ServerTime string `json:"server_time"`
	Summary    string `json:"summary"`
	Debug      Debug  `json:"debug"`
	Error      string `json:"error,omitempty"`
}

type FetchInput struct {
	Profile     catdto.Profile `json:"pos_profile"`
	PriceList   string         `json:"price_list"`
	Customer    string         `json:"customer"`
	Identifiers []string       `json:"item_codes"`
}

type FetchOutput struct {
	Items     []catdto.CatalogRow `json:"items"`
	Requested int                 `json:"requested"`
	Truncated bool                `json:"truncated"`
}

type CustomersInput struct {
	Cursor string             `json:"modified_after"`
	Limit  catdto.OptionalInt `json:"limit"`
}

type CustomerSummary struct {
	Name             string    `json:"name"`
	CustomerName     string    `json:"customer_name"`
	CustomerGroup    string    `json:"customer_group"`
	Territory        string    `json:"territory"`
	DefaultPriceList string    `json:"default_price_list"`
	MobileNo         string    `json:"mobile_no"`
	EmailID          string    `json:"email_id"`
	Modified         time.Time `json:"modified"`
}

type CustomersOutput struct {
	Customers []CustomerSummary `json:"customers"`
	Count     int               `json:"count"`
}
