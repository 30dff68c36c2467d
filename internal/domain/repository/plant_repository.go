package repository

import (
	"context"

	"bloommarket/internal/domain/entity"
)

// LatitudeBand narrows a listing scan to a strip of latitudes. Firestore can
// only range-filter one field, so longitude is left to the ranking step.
type LatitudeBand struct {
	Min float64
	Max float64
}

type PlantRepository interface {
	Create(ctx context.Context, plant *entity.Plant) error
	GetByID(ctx context.Context, id string) (*entity.Plant, error)
	// List returns every plant, or only those inside band when it is set.
	List(ctx context.Context, band *LatitudeBand) ([]*entity.Plant, error)
	ListBySellerID(ctx context.Context, sellerID string) ([]*entity.Plant, error)
}
