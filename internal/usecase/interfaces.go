package usecase

import (
	"context"

	"bloommarket/internal/domain/entity"
)

// ProfileSource looks up the identity provider's record for a user.
type ProfileSource interface {
	GetProfile(ctx context.Context, uid string) (*entity.User, error)
}
