package repository

import (
	"context"

	"bloommarket/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// ListByUserID returns the buyer's orders, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*entity.Order, error)
}
