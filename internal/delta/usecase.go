package delta

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/delta/dto"
)

var ErrInvalidInput = errors.New("invalid input")

// UseCase serves incremental catalog synchronization. Operations degrade to
// empty, well-formed responses on store failures; only malformed requests
// return an error.
type UseCase interface {
	CheckChanges(ctx context.Context, input *dto.ChangesInput) (*dto.ChangeSummary, error)
	FetchByIdentifiers(ctx context.Context, input *dto.FetchInput) (*dto.FetchOutput, error)
	RecentCustomers(ctx context.Context, input *dto.CustomersInput) (*dto.CustomersOutput, error)
}
