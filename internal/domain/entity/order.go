package entity

import (
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID            string        `json:"id" firestore:"id"`
	UserID        string        `json:"userId" firestore:"userId"`
	PlantID       string        `json:"plantId" firestore:"plantId"`
	PlantTitle    string        `json:"plantTitle" firestore:"plantTitle"`
	PlantImage    string        `json:"plantImage" firestore:"plantImage"`
	SellerName    string        `json:"sellerName" firestore:"sellerName"`
	SellerID      string        `json:"sellerId" firestore:"sellerId"`
	Price         float64       `json:"price" firestore:"price"`
	Currency      string        `json:"currency,omitempty" firestore:"currency,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod" firestore:"paymentMethod"`
	Status        OrderStatus   `json:"status" firestore:"status"`
	Address       string        `json:"address,omitempty" firestore:"address,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
}
