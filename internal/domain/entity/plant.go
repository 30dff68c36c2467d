package entity

import (
	"time"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentPickup PaymentMethod = "Pickup"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentPickup
}

// Plant is a listing offered by a seller at the seller's location.
type Plant struct {
	ID               string          `json:"id" firestore:"id"`
	UserID           string          `json:"userId" firestore:"userId"`
	SellerName       string          `json:"sellerName" firestore:"sellerName"`
	SellerPhotoURL   string          `json:"sellerPhotoURL" firestore:"sellerPhotoURL"`
	Title            string          `json:"title" firestore:"title"`
	Description      string          `json:"description" firestore:"description"`
	Price            float64         `json:"price" firestore:"price"`
	Currency         string          `json:"currency,omitempty" firestore:"currency,omitempty"`
	Image            string          `json:"image" firestore:"image"`
	GrowthConditions string          `json:"growthConditions" firestore:"growthConditions"`
	PaymentMethods   []PaymentMethod `json:"paymentMethods" firestore:"paymentMethods"`
	Location         Coordinate      `json:"location" firestore:"location"`
	CreatedAt        time.Time       `json:"createdAt" firestore:"createdAt"`
}

func (p *Plant) GetLocation() Coordinate {
	return p.Location
}

func (p *Plant) Accepts(method PaymentMethod) bool {
	for _, m := range p.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
