package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bloommarket/internal/domain/entity"
	apperrors "bloommarket/pkg/errors"
)

func testPlant() *entity.Plant {
	return &entity.Plant{
		ID:             "plant_1",
		UserID:         "seller",
		SellerName:     "Sam",
		Title:          "Monstera",
		Price:          25,
		PaymentMethods: []entity.PaymentMethod{entity.PaymentCOD, entity.PaymentPickup},
	}
}

func TestValidateOrder(t *testing.T) {
	pickupOnly := testPlant()
	pickupOnly.PaymentMethods = []entity.PaymentMethod{entity.PaymentPickup}
	noMethods := testPlant()
	noMethods.PaymentMethods = nil

	tests := []struct {
		name     string
		plant    *entity.Plant
		req      OrderRequest
		wantCode string
	}{
		{
			name:  "cod with address",
			plant: testPlant(),
			req:   OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: entity.PaymentCOD, Address: "1 Main St"},
		},
		{
			name:  "pickup without address",
			plant: testPlant(),
			req:   OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: entity.PaymentPickup},
		},
		{
			name:     "missing listing",
			plant:    nil,
			req:      OrderRequest{BuyerID: "buyer", PlantID: "gone", PaymentMethod: entity.PaymentPickup},
			wantCode: apperrors.CodeListingNotFound,
		},
		{
			name:     "cod with blank address",
			plant:    testPlant(),
			req:      OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: entity.PaymentCOD, Address: "   "},
			wantCode: apperrors.CodeAddressRequired,
		},
		{
			name:     "own listing",
			plant:    testPlant(),
			req:      OrderRequest{BuyerID: "seller", PlantID: "plant_1", PaymentMethod: entity.PaymentPickup},
			wantCode: apperrors.CodeSelfPurchaseNotAllowed,
		},
		{
			name:     "method not advertised",
			plant:    pickupOnly,
			req:      OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: entity.PaymentCOD, Address: "1 Main St"},
			wantCode: apperrors.CodePaymentMethodNotAccepted,
		},
		{
			name:     "listing advertises no methods",
			plant:    noMethods,
			req:      OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: entity.PaymentCOD, Address: "1 Main St"},
			wantCode: apperrors.CodePaymentMethodNotAccepted,
		},
		{
			name:     "unknown method",
			plant:    testPlant(),
			req:      OrderRequest{BuyerID: "buyer", PlantID: "plant_1", PaymentMethod: "Card"},
			wantCode: apperrors.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrder(tt.plant, tt.req)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestNewOrderSnapshotsListing(t *testing.T) {
	order := NewOrder(testPlant(), OrderRequest{
		BuyerID:       "buyer",
		PlantID:       "plant_1",
		PaymentMethod: entity.PaymentCOD,
		Address:       " 1 Main St ",
	})

	assert.Equal(t, "buyer", order.UserID)
	assert.Equal(t, "seller", order.SellerID)
	assert.Equal(t, "Monstera", order.PlantTitle)
	assert.Equal(t, 25.0, order.Price)
	assert.Equal(t, entity.OrderPending, order.Status)
	assert.Equal(t, "1 Main St", order.Address)
}

func TestNewOrderPickupDropsAddress(t *testing.T) {
	order := NewOrder(testPlant(), OrderRequest{
		BuyerID:       "buyer",
		PaymentMethod: entity.PaymentPickup,
		Address:       "ignored",
	})

	assert.Empty(t, order.Address)
}
