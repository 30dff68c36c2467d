package service

import (
	"strings"

	"bloommarket/internal/domain/entity"
	"bloommarket/pkg/errors"
)

// OrderRequest is what a buyer submits before an order exists.
type OrderRequest struct {
	BuyerID       string
	PlantID       string
	PaymentMethod entity.PaymentMethod
	Address       string
}

// ValidateOrder checks req against the listing it targets. A nil plant
// means the listing could not be found.
func ValidateOrder(plant *entity.Plant, req OrderRequest) error {
	if plant == nil {
		return errors.ListingNotFound(req.PlantID)
	}

	if !req.PaymentMethod.Valid() {
		return errors.BadRequest("Payment method must be one of: COD, Pickup", nil)
	}

	if req.PaymentMethod == entity.PaymentCOD && strings.TrimSpace(req.Address) == "" {
		return errors.AddressRequired()
	}

	if plant.UserID == req.BuyerID {
		return errors.SelfPurchaseNotAllowed()
	}

	if !plant.Accepts(req.PaymentMethod) {
		return errors.PaymentMethodNotAccepted(string(req.PaymentMethod))
	}

	return nil
}

// NewOrder snapshots the listing into a pending order. Callers assign the ID
// and CreatedAt.
func NewOrder(plant *entity.Plant, req OrderRequest) *entity.Order {
	order := &entity.Order{
		UserID:        req.BuyerID,
		PlantID:       plant.ID,
		PlantTitle:    plant.Title,
		PlantImage:    plant.Image,
		SellerName:    plant.SellerName,
		SellerID:      plant.UserID,
		Price:         plant.Price,
		Currency:      plant.Currency,
		PaymentMethod: req.PaymentMethod,
		Status:        entity.OrderPending,
	}
	if req.PaymentMethod == entity.PaymentCOD {
		order.Address = strings.TrimSpace(req.Address)
	}
	return order
}
