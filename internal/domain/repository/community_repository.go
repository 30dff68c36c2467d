package repository

import (
	"context"

	"bloommarket/internal/domain/entity"
)

type CommunityRepository interface {
	Create(ctx context.Context, community *entity.Community) error
	GetByID(ctx context.Context, id string) (*entity.Community, error)
	List(ctx context.Context, band *LatitudeBand) ([]*entity.Community, error)
	ListByMember(ctx context.Context, userID string) ([]*entity.Community, error)
	// AddMember and RemoveMember are idempotent.
	AddMember(ctx context.Context, communityID, userID string) error
	RemoveMember(ctx context.Context, communityID, userID string) error
}
