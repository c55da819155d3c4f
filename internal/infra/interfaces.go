package infra

import (
	"context"

	"github.com/google/uuid"
)

type ListingClientInterface interface {
	GetListingById(ctx context.Context, id uuid.UUID) (*ListingInfo, error)
}

type FarmClientInterface interface {
	GetFarmById(ctx context.Context, id uuid.UUID) (*FarmInfo, error)
}

var _ ListingClientInterface = (*ListingClient)(nil)
var _ FarmClientInterface = (*FarmClient)(nil)
