package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/errors"
)

const plantsCollection = "plants"

type firestorePlantRepository struct {
	client *firestore.Client
}

func NewFirestorePlantRepository(client *firestore.Client) repository.PlantRepository {
	return &firestorePlantRepository{
		client: client,
	}
}

func (r *firestorePlantRepository) Create(ctx context.Context, plant *entity.Plant) error {
	if plant.ID == "" {
		plant.ID = r.client.Collection(plantsCollection).NewDoc().ID
	}
	if plant.CreatedAt.IsZero() {
		plant.CreatedAt = time.Now()
	}

	_, err := r.client.Collection(plantsCollection).Doc(plant.ID).Set(ctx, plant)
	if err != nil {
		return errors.Internal("Failed to create plant", err)
	}

	return nil
}

func (r *firestorePlantRepository) GetByID(ctx context.Context, id string) (*entity.Plant, error) {
	doc, err := r.client.Collection(plantsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Plant", err)
		}
		return nil, errors.Internal("Failed to get plant", err)
	}

	var plant entity.Plant
	if err := doc.DataTo(&plant); err != nil {
		return nil, errors.Internal("Failed to parse plant data", err)
	}
	plant.ID = doc.Ref.ID

	return &plant, nil
}

func (r *firestorePlantRepository) List(ctx context.Context, band *repository.LatitudeBand) ([]*entity.Plant, error) {
	query := r.client.Collection(plantsCollection).Query
	if band != nil {
		query = query.
			Where("location.latitude", ">=", band.Min).
			Where("location.latitude", "<=", band.Max)
	}

	return r.collect(query.Documents(ctx))
}

func (r *firestorePlantRepository) ListBySellerID(ctx context.Context, sellerID string) ([]*entity.Plant, error) {
	query := r.client.Collection(plantsCollection).
		Where("userId", "==", sellerID).
		OrderBy("createdAt", firestore.Desc)

	return r.collect(query.Documents(ctx))
}

func (r *firestorePlantRepository) collect(iter *firestore.DocumentIterator) ([]*entity.Plant, error) {
	defer iter.Stop()

	plants := []*entity.Plant{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate plants", err)
		}

		var plant entity.Plant
		if err := doc.DataTo(&plant); err != nil {
			return nil, errors.Internal("Failed to parse plant data", err)
		}
		plant.ID = doc.Ref.ID
		plants = append(plants, &plant)
	}

	return plants, nil
}
