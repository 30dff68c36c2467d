package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/session"
	apperrors "bloommarket/pkg/errors"
	"bloommarket/pkg/utils"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingToken struct{}

func (failingToken) Token(ctx context.Context) (string, error) {
	return "", errors.New("expired")
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   status < 400,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/api", srv.Client(), staticToken("tok"), 25)
	c.retry = utils.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	return c
}

func TestFetchListings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/plants/nearby", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body nearbyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 37.7749, body.UserLocation.Latitude)
		assert.Equal(t, 25.0, body.RadiusKm)

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"plants": []map[string]interface{}{
				{"id": "p1", "title": "Fern", "userId": "u1", "location": map[string]float64{"latitude": 37.8, "longitude": -122.27}},
			},
		})
	})

	plants, err := c.FetchListings(context.Background(), entity.NewCoordinate(37.7749, -122.4194))
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "p1", plants[0].ID)
	assert.Equal(t, "u1", plants[0].UserID)
	assert.Equal(t, 37.8, plants[0].Location.Latitude)
}

func TestFetchCommunitiesAndOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/communities/nearby":
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"communities": []map[string]interface{}{{"id": "c1", "members": []string{"u1"}}},
			})
		case "/api/orders/user/u1":
			assert.Equal(t, http.MethodGet, r.Method)
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"orders": []map[string]interface{}{{"id": "o1", "status": "pending"}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	communities, err := c.FetchCommunities(context.Background(), entity.NewCoordinate(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, communities[0].Members)

	orders, err := c.FetchOrders(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, orders[0].Status)
}

func TestNonSuccessIsFetchFailedWithServerCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, apperrors.CodeAddressRequired, "Delivery address is required")
	})

	_, err := c.SubmitOrder(context.Background(), &entity.Order{PlantID: "p1", PaymentMethod: entity.PaymentCOD})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeFetchFailed))
	assert.True(t, apperrors.Is(err, apperrors.CodeAddressRequired))
}

func TestTransientFailuresAreRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeError(w, http.StatusServiceUnavailable, apperrors.CodeInternal, "try later")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"plants": []interface{}{}})
	})

	plants, err := c.FetchListings(context.Background(), entity.NewCoordinate(1, 1))
	require.NoError(t, err)
	assert.Empty(t, plants)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestUnreadableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	})

	_, err := c.FetchListings(context.Background(), entity.NewCoordinate(1, 1))
	assert.True(t, apperrors.Is(err, apperrors.CodeFetchFailed))
}

func TestSubmitListingSendsLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/plants", r.URL.Path)

		var body createPlantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Fern", body.Title)
		assert.Equal(t, 2.0, body.Location.Longitude)

		writeEnvelope(w, http.StatusCreated, map[string]interface{}{"id": "srv1", "title": body.Title})
	})

	saved, err := c.SubmitListing(context.Background(), &entity.Plant{ID: "plant_local", Title: "Fern", Location: entity.NewCoordinate(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, "srv1", saved.ID)
}

func TestSubmitCommunityAction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/communities/c1/join", r.URL.Path)
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"id": "c1", "members": []string{"u1", "u2"}})
	})

	saved, err := c.SubmitCommunityAction(context.Background(), "c1", session.ActionJoin)
	require.NoError(t, err)
	assert.Len(t, saved.Members, 2)
}

func TestTokenFailureIsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	c.tokens = failingToken{}

	_, err := c.FetchOrders(context.Background(), "u1")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestUpdateMyLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/me/location", r.URL.Path)
		writeEnvelope(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	assert.NoError(t, c.UpdateMyLocation(context.Background(), entity.NewCoordinate(1, 1)))
}
