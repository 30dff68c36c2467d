package entity

import (
	"time"
)

// User is the signed-in account plus its last resolved location.
type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Name     string `json:"name" firestore:"name"`
	PhotoURL string `json:"photoURL" firestore:"photoURL"`

	Location          *Coordinate `json:"location" firestore:"location,omitempty"`
	LocationUpdatedAt time.Time   `json:"locationUpdatedAt,omitempty" firestore:"locationUpdatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" firestore:"updatedAt"`
}
