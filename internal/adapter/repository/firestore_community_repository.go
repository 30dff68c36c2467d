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

const communitiesCollection = "communities"

type firestoreCommunityRepository struct {
	client *firestore.Client
}

func NewFirestoreCommunityRepository(client *firestore.Client) repository.CommunityRepository {
	return &firestoreCommunityRepository{
		client: client,
	}
}

func (r *firestoreCommunityRepository) Create(ctx context.Context, community *entity.Community) error {
	if community.ID == "" {
		community.ID = r.client.Collection(communitiesCollection).NewDoc().ID
	}
	if community.CreatedAt.IsZero() {
		community.CreatedAt = time.Now()
	}

	_, err := r.client.Collection(communitiesCollection).Doc(community.ID).Set(ctx, community)
	if err != nil {
		return errors.Internal("Failed to create community", err)
	}

	return nil
}

func (r *firestoreCommunityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	doc, err := r.client.Collection(communitiesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.CommunityNotFound(id)
		}
		return nil, errors.Internal("Failed to get community", err)
	}

	var community entity.Community
	if err := doc.DataTo(&community); err != nil {
		return nil, errors.Internal("Failed to parse community data", err)
	}
	community.ID = doc.Ref.ID

	return &community, nil
}

func (r *firestoreCommunityRepository) List(ctx context.Context, band *repository.LatitudeBand) ([]*entity.Community, error) {
	query := r.client.Collection(communitiesCollection).Query
	if band != nil {
		query = query.
			Where("location.latitude", ">=", band.Min).
			Where("location.latitude", "<=", band.Max)
	}

	return r.collect(query.Documents(ctx))
}

func (r *firestoreCommunityRepository) ListByMember(ctx context.Context, userID string) ([]*entity.Community, error) {
	query := r.client.Collection(communitiesCollection).Where("members", "array-contains", userID)
	return r.collect(query.Documents(ctx))
}

func (r *firestoreCommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	return r.updateMembers(ctx, communityID, firestore.ArrayUnion(userID))
}

func (r *firestoreCommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	return r.updateMembers(ctx, communityID, firestore.ArrayRemove(userID))
}

func (r *firestoreCommunityRepository) updateMembers(ctx context.Context, communityID string, transform interface{}) error {
	_, err := r.client.Collection(communitiesCollection).Doc(communityID).Update(ctx, []firestore.Update{
		{Path: "members", Value: transform},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.CommunityNotFound(communityID)
		}
		return errors.Internal("Failed to update community members", err)
	}
	return nil
}

func (r *firestoreCommunityRepository) collect(iter *firestore.DocumentIterator) ([]*entity.Community, error) {
	defer iter.Stop()

	communities := []*entity.Community{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate communities", err)
		}

		var community entity.Community
		if err := doc.DataTo(&community); err != nil {
			return nil, errors.Internal("Failed to parse community data", err)
		}
		community.ID = doc.Ref.ID
		communities = append(communities, &community)
	}

	return communities, nil
}
