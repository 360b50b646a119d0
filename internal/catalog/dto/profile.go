package dto

// DefaultSearchLimit bounds the catalog scan when a profile asks for
// limited search without naming a size.
const DefaultSearchLimit = 500

// Profile is the terminal configuration a request runs under. It is a
// plain value: usecases read it and never mutate it.
type Profile struct {
	Name                string   `json:"name"`
	Company             string   `json:"company"`
	Warehouse           string   `json:"warehouse"`
	Currency            string   `json:"currency"`
	ItemGroups          []string `json:"item_groups"` // entitlement, empty means all
	ShowTemplateItems   bool     `json:"show_template_items"`
	DisplayItemsInStock bool     `json:"display_items_in_stock"`
	UseLimitSearch      bool     `json:"use_limit_search"`
	SearchLimit         int      `json:"search_limit"`
	ForceReloadItems    bool     `json:"force_reload_items"`
	SearchSerialNo      bool     `json:"search_serial_no"`
	SearchBatchNo       bool     `json:"search_batch_no"`
	UseServerCache      bool     `json:"use_server_cache"`
}

// EffectiveSearchLimit is SearchLimit, or DefaultSearchLimit when unset.
func (p Profile) EffectiveSearchLimit() int {
	if p.SearchLimit > 0 {
		return p.SearchLimit
	}
	return DefaultSearchLimit
}
