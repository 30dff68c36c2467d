package usecase

import (
	"context"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/repository"
	"bloommarket/internal/domain/service"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

type OrderUseCase struct {
	orderRepo repository.OrderRepository
	plantRepo repository.PlantRepository
}

func NewOrderUseCase(orderRepo repository.OrderRepository, plantRepo repository.PlantRepository) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		plantRepo: plantRepo,
	}
}

func (uc *OrderUseCase) PlaceOrder(ctx context.Context, req service.OrderRequest) (*entity.Order, error) {
	plant, err := uc.plantRepo.GetByID(ctx, req.PlantID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		plant = nil
	}

	if err := service.ValidateOrder(plant, req); err != nil {
		return nil, err
	}

	order := service.NewOrder(plant, req)
	order.CreatedAt = time.Now()

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	logger.Info("Order %s placed by %s for plant %s", order.ID, req.BuyerID, plant.ID)

	return order, nil
}

// ListOrders returns userID's orders. Only the user may read them.
func (uc *OrderUseCase) ListOrders(ctx context.Context, requesterID, userID string) ([]*entity.Order, error) {
	if requesterID != userID {
		return nil, errors.Forbidden("You can only view your own orders", nil)
	}
	return uc.orderRepo.ListByUserID(ctx, userID)
}

// GetOrder is visible to the buyer and the seller.
func (uc *OrderUseCase) GetOrder(ctx context.Context, requesterID, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && order.SellerID != requesterID {
		return nil, errors.Forbidden("You don't have permission to view this order", nil)
	}
	return order, nil
}
