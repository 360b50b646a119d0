package catalog

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")
)

type UseCase interface {
	Query(ctx context.Context, input *dto.QueryInput) ([]dto.CatalogRow, error)
	VariantsOf(ctx context.Context, input *dto.VariantsInput) (*dto.VariantsResult, error)
	// ItemGroups lists the leaf groups the profile may sell from.
	ItemGroups(ctx context.Context, input *dto.GroupsInput) ([]dto.ItemGroup, error)
	DetailOf(ctx context.Context, input *dto.DetailInput) (*dto.ItemDetail, error)
	// ResolveByBarcode returns nil when no barcode matches exactly.
	ResolveByBarcode(ctx context.Context, input *dto.BarcodeInput) (*dto.BarcodeHit, error)
	SearchIdentifier(ctx context.Context, input *dto.IdentifierInput) (*dto.IdentifierHit, error)
}

// Searcher proposes item codes for a free-text term from an external index.
type Searcher interface {
	SearchCodes(ctx context.Context, term string, limit int) ([]string, error)
}
