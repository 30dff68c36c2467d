package repository

import (
	"context"
	"time"

	"bloommarket/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateLocation(ctx context.Context, id string, location entity.Coordinate, at time.Time) error
}
