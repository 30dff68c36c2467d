package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bloommarket/pkg/errors"
)

func newTestIdentity(t *testing.T, handler http.HandlerFunc) *IdentityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewIdentityClient("test-key", srv.Client()).WithEndpoints(srv.URL+"/v1", srv.URL+"/st")
}

func TestSignInWithPassword(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob@example.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		json.NewEncoder(w).Encode(map[string]string{
			"localId":      "uid-bob",
			"email":        "bob@example.com",
			"idToken":      "id-1",
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
		})
	})

	s, err := c.SignInWithPassword(context.Background(), "bob@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "uid-bob", s.UserID)
	assert.Equal(t, "bob", s.DisplayName)

	token, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id-1", token)

	id, ok := c.Identity()
	require.True(t, ok)
	assert.Equal(t, "uid-bob", id.UserID)
}

func TestSignInRejected(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "bob@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestTokenRefreshesWhenExpiring(t *testing.T) {
	var refreshes int32
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/accounts:signInWithCustomToken":
			json.NewEncoder(w).Encode(map[string]string{
				"localId": "uid-1", "idToken": "old", "refreshToken": "r1", "expiresIn": "30",
			})
		case "/st/token":
			atomic.AddInt32(&refreshes, 1)
			json.NewEncoder(w).Encode(map[string]string{
				"user_id": "uid-1", "id_token": "new", "refresh_token": "r2", "expires_in": "3600",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := c.SignInWithCustomToken(context.Background(), "custom")
	require.NoError(t, err)

	token, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", token)

	token, err = c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
}

func TestTokenWithoutSignIn(t *testing.T) {
	c := NewIdentityClient("k", nil)

	_, err := c.Token(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	_, ok := c.Identity()
	assert.False(t, ok)
}

func TestSignOutForgetsSession(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"localId": "u", "idToken": "t", "expiresIn": "3600"})
	})
	_, err := c.SignInWithPassword(context.Background(), "a@b.c", "p")
	require.NoError(t, err)

	c.SignOut()
	_, ok := c.Identity()
	assert.False(t, ok)
}
