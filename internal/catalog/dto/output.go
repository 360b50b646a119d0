package dto

type QueryOutput struct {
	Items []CatalogRow `json:"items"`
}

type GroupsOutput struct {
	Groups []ItemGroup `json:"groups"`
}

type BarcodeOutput struct {
	Found bool        `json:"found"`
	Item  *BarcodeHit `json:"item,omitempty"`
}

type IdentifierOutput struct {
	Found bool           `json:"found"`
	Hit   *IdentifierHit `json:"hit,omitempty"`
}
