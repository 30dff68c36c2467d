package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	"bloommarket/internal/domain/entity"
	"bloommarket/pkg/errors"
)

type FirebaseAuthClient struct {
	client   *auth.Client
	identity *IdentityClient
}

// NewFirebaseAuthClient wraps the admin client. identity is only needed for
// dev token exchange and may be nil.
func NewFirebaseAuthClient(client *auth.Client, identity *IdentityClient) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:   client,
		identity: identity,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// GetProfile maps the Firebase user record onto a marketplace user without
// a location.
func (f *FirebaseAuthClient) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user profile", err)
	}

	return &entity.User{
		ID:       record.UID,
		Email:    record.Email,
		Name:     record.DisplayName,
		PhotoURL: record.PhotoURL,
	}, nil
}

// TestConnection reads the first page of users to prove the credentials work.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.Users(ctx, "").Next()
	if err == iterator.Done {
		return nil
	}
	return err
}
