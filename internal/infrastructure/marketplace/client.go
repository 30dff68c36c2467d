// Package marketplace talks to the marketplace HTTP API.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/session"
	apperrors "bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
	"bloommarket/pkg/utils"
)

// TokenProvider supplies the bearer token for authenticated calls. An empty
// token sends the request anonymously.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL  string
	session  *http.Client
	tokens   TokenProvider
	retry    utils.RetryPolicy
	radiusKm float64
}

var _ session.DataService = (*Client)(nil)

// NewClient builds a client for baseURL, e.g. http://localhost:8080/api.
// radiusKm bounds nearby queries; zero leaves it to the server.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenProvider, radiusKm float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		session:  httpClient,
		tokens:   tokens,
		retry:    utils.DefaultRetryPolicy,
		radiusKm: radiusKm,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type nearbyRequest struct {
	UserLocation entity.Coordinate `json:"user_location"`
	RadiusKm     float64           `json:"radius_km,omitempty"`
}

type createPlantRequest struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Price            float64                `json:"price"`
	Currency         string                 `json:"currency,omitempty"`
	Image            string                 `json:"image"`
	GrowthConditions string                 `json:"growthConditions"`
	PaymentMethods   []entity.PaymentMethod `json:"paymentMethods"`
	Location         entity.Coordinate      `json:"location"`
}

type createCommunityRequest struct {
	Name     string               `json:"name"`
	Type     entity.CommunityType `json:"type"`
	Purpose  string               `json:"purpose"`
	Bio      string               `json:"bio"`
	Location entity.Coordinate    `json:"location"`
}

type createOrderRequest struct {
	PlantID       string               `json:"plant_id"`
	PaymentMethod entity.PaymentMethod `json:"payment_method"`
	Address       string               `json:"address,omitempty"`
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

func (c *Client) FetchListings(ctx context.Context, ref entity.Coordinate) (_ []*entity.Plant, err error) {
	defer logger.Time(ctx, "marketplace.fetchListings")(&err)

	var out struct {
		Plants []*entity.Plant `json:"plants"`
	}
	if err := c.call(ctx, http.MethodPost, "/plants/nearby", nearbyRequest{UserLocation: ref, RadiusKm: c.radiusKm}, &out); err != nil {
		return nil, err
	}
	return out.Plants, nil
}

func (c *Client) FetchCommunities(ctx context.Context, ref entity.Coordinate) (_ []*entity.Community, err error) {
	defer logger.Time(ctx, "marketplace.fetchCommunities")(&err)

	var out struct {
		Communities []*entity.Community `json:"communities"`
	}
	if err := c.call(ctx, http.MethodPost, "/communities/nearby", nearbyRequest{UserLocation: ref, RadiusKm: c.radiusKm}, &out); err != nil {
		return nil, err
	}
	return out.Communities, nil
}

func (c *Client) FetchOrders(ctx context.Context, userID string) (_ []*entity.Order, err error) {
	defer logger.Time(ctx, "marketplace.fetchOrders")(&err)

	var out struct {
		Orders []*entity.Order `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) SubmitListing(ctx context.Context, plant *entity.Plant) (*entity.Plant, error) {
	body := createPlantRequest{
		Title:            plant.Title,
		Description:      plant.Description,
		Price:            plant.Price,
		Currency:         plant.Currency,
		Image:            plant.Image,
		GrowthConditions: plant.GrowthConditions,
		PaymentMethods:   plant.PaymentMethods,
		Location:         plant.Location,
	}

	var saved entity.Plant
	if err := c.call(ctx, http.MethodPost, "/plants", body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) SubmitCommunity(ctx context.Context, community *entity.Community) (*entity.Community, error) {
	body := createCommunityRequest{
		Name:     community.Name,
		Type:     community.Type,
		Purpose:  community.Purpose,
		Bio:      community.Bio,
		Location: community.Location,
	}

	var saved entity.Community
	if err := c.call(ctx, http.MethodPost, "/communities", body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) SubmitCommunityAction(ctx context.Context, communityID string, action session.CommunityAction) (*entity.Community, error) {
	path := fmt.Sprintf("/communities/%s/%s", url.PathEscape(communityID), action)

	var saved entity.Community
	if err := c.call(ctx, http.MethodPost, path, nil, &saved); err != nil {
		return nil, err
	}
	if saved.ID == "" {
		return nil, nil
	}
	return &saved, nil
}

func (c *Client) SubmitOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	body := createOrderRequest{
		PlantID:       order.PlantID,
		PaymentMethod: order.PaymentMethod,
		Address:       order.Address,
	}

	var saved entity.Order
	if err := c.call(ctx, http.MethodPost, "/orders", body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Me returns the profile of the token's user.
func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := c.call(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMyLocation stores the user's last known coordinate on the server.
func (c *Client) UpdateMyLocation(ctx context.Context, coord entity.Coordinate) error {
	body := locationRequest{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Address:   coord.Address,
	}
	return c.call(ctx, http.MethodPut, "/me/location", body, nil)
}

// call sends one JSON request and decodes the envelope's data into out.
// Every failure comes back as FETCH_FAILED wrapping the cause.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal("Failed to encode request", err)
		}
		payload = b
	}

	token := ""
	if c.tokens != nil {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return apperrors.Unauthorized("Could not obtain an access token", err)
		}
		token = t
	}

	endpoint := c.baseURL + path
	resp, err := utils.DoWithRetry(ctx, c.session, c.retry, func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	})
	if err != nil {
		return apperrors.FetchFailed(fmt.Sprintf("%s %s failed", method, path), remoteError(err))
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperrors.FetchFailed(fmt.Sprintf("%s %s returned an unreadable body", method, path), err)
	}
	if !env.Success {
		return apperrors.FetchFailed(fmt.Sprintf("%s %s was rejected", method, path), envelopeError(resp.StatusCode, &env))
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.FetchFailed(fmt.Sprintf("%s %s returned unexpected data", method, path), err)
	}
	return nil
}

// remoteError unpacks an error envelope from a failed response so callers
// can still check the server's code.
func remoteError(err error) error {
	var he *utils.HTTPStatusError
	if !errors.As(err, &he) {
		return err
	}
	var env envelope
	if json.Unmarshal([]byte(he.Body), &env) != nil || env.Error == nil {
		return err
	}
	return envelopeError(he.Code, &env)
}

func envelopeError(status int, env *envelope) error {
	if env.Error == nil {
		return fmt.Errorf("request failed with status %d", status)
	}
	return apperrors.New(env.Error.Code, env.Error.Message, status, nil)
}
