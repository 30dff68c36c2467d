package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreHealth checks that the plants collection can be read.
type FirestoreHealth struct {
	client *firestore.Client
}

func NewFirestoreHealth(client *firestore.Client) *FirestoreHealth {
	return &FirestoreHealth{client: client}
}

func (h *FirestoreHealth) TestConnection(ctx context.Context) error {
	iter := h.client.Collection(plantsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return nil
	}
	return err
}
