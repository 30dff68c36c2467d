package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloommarket/internal/domain/entity"
	"bloommarket/pkg/errors"
)

func newCommunityFixture(communities ...*entity.Community) (*CommunityUseCase, *memoryCommunities) {
	repo := newMemoryCommunities(communities...)
	loc := sanFrancisco
	userUC := NewUserUseCase(newMemoryUsers(&entity.User{ID: "u1", Location: &loc}), staticProfiles{})
	return NewCommunityUseCase(repo, userUC, 0), repo
}

func TestJoinCommunityIsIdempotent(t *testing.T) {
	uc, repo := newCommunityFixture(&entity.Community{ID: "c1", Members: []string{"owner"}, Location: oakland})
	ctx := context.Background()

	first, err := uc.JoinCommunity(ctx, "c1", "u1")
	require.NoError(t, err)
	second, err := uc.JoinCommunity(ctx, "c1", "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"owner", "u1"}, first.Members)
	assert.Equal(t, first.Members, second.Members)
	assert.Equal(t, 1, repo.writes)
}

func TestLeaveCommunityWhenNotMember(t *testing.T) {
	uc, repo := newCommunityFixture(&entity.Community{ID: "c1", Members: []string{"owner"}, Location: oakland})

	community, err := uc.LeaveCommunity(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, community.Members)
	assert.Zero(t, repo.writes)
}

func TestLeaveCommunityRemovesMember(t *testing.T) {
	uc, _ := newCommunityFixture(&entity.Community{ID: "c1", Members: []string{"owner", "u1"}, Location: oakland})

	community, err := uc.LeaveCommunity(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, community.Members)

	mine, err := uc.MyCommunities(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestJoinUnknownCommunity(t *testing.T) {
	uc, _ := newCommunityFixture()

	_, err := uc.JoinCommunity(context.Background(), "nope", "u1")
	assert.True(t, errors.Is(err, errors.CodeCommunityNotFound))
}

func TestCreateCommunityDefaults(t *testing.T) {
	uc, _ := newCommunityFixture()

	community, err := uc.CreateCommunity(context.Background(), "u1", CreateCommunityInput{Name: "Succulent swap"})
	require.NoError(t, err)

	assert.Equal(t, entity.CommunityPermanent, community.Type)
	assert.Equal(t, []string{"u1"}, community.Members)
	assert.Equal(t, sanFrancisco, community.Location)

	_, err = uc.CreateCommunity(context.Background(), "u1", CreateCommunityInput{Name: "x", Type: "Forever"})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestNearbyCommunities(t *testing.T) {
	uc, _ := newCommunityFixture(
		&entity.Community{ID: "c1", Location: berkeley},
		&entity.Community{ID: "c2", Location: oakland},
		&entity.Community{ID: "c3", Location: losAngeles},
	)

	got, err := uc.NearbyCommunities(context.Background(), sanFrancisco, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}
