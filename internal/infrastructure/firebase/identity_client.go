package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"bloommarket/internal/session"
	apperrors "bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
	"bloommarket/pkg/utils"
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"

	refreshLeeway = time.Minute
)

// AuthSession is a signed-in Firebase user on the client side.
type AuthSession struct {
	UserID       string
	Email        string
	DisplayName  string
	PhotoURL     string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// IdentityClient signs users in through the Firebase Auth REST API and keeps
// their ID token fresh. It satisfies the marketplace token provider.
type IdentityClient struct {
	apiKey      string
	identityURL string
	tokenURL    string
	session     *http.Client

	mu      sync.Mutex
	current *AuthSession
}

func NewIdentityClient(apiKey string, httpClient *http.Client) *IdentityClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &IdentityClient{
		apiKey:      apiKey,
		identityURL: DefaultIdentityToolkitURL,
		tokenURL:    DefaultSecureTokenURL,
		session:     httpClient,
	}
}

// WithEndpoints points the client at other hosts, e.g. the auth emulator.
func (c *IdentityClient) WithEndpoints(identityURL, tokenURL string) *IdentityClient {
	c.identityURL = strings.TrimRight(identityURL, "/")
	c.tokenURL = strings.TrimRight(tokenURL, "/")
	return c
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error) {
	var resp signInResponse
	err := c.post(ctx, c.identityURL+"/accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.store(resp), nil
}

func (c *IdentityClient) SignInWithCustomToken(ctx context.Context, customToken string) (*AuthSession, error) {
	var resp signInResponse
	err := c.post(ctx, c.identityURL+"/accounts:signInWithCustomToken", map[string]interface{}{
		"token":             customToken,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.store(resp), nil
}

// Token returns a valid ID token, refreshing it shortly before it expires.
func (c *IdentityClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return "", apperrors.Unauthorized("Not signed in", nil)
	}
	if time.Until(current.ExpiresAt) > refreshLeeway {
		return current.IDToken, nil
	}

	var resp refreshResponse
	err := c.post(ctx, c.tokenURL+"/token", map[string]interface{}{
		"grant_type":    "refresh_token",
		"refresh_token": current.RefreshToken,
	}, &resp)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	refreshed := *current
	refreshed.IDToken = resp.IDToken
	refreshed.RefreshToken = resp.RefreshToken
	refreshed.ExpiresAt = expiry(resp.ExpiresIn)
	c.current = &refreshed
	logger.Debug("refreshed id token for %s", refreshed.UserID)
	return refreshed.IDToken, nil
}

// Identity describes the signed-in user for the session layer.
func (c *IdentityClient) Identity() (session.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return session.Identity{}, false
	}
	return session.Identity{
		UserID:      c.current.UserID,
		DisplayName: c.current.DisplayName,
		Email:       c.current.Email,
		PhotoURL:    c.current.PhotoURL,
	}, true
}

func (c *IdentityClient) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *IdentityClient) store(resp signInResponse) *AuthSession {
	s := &AuthSession{
		UserID:       resp.LocalID,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoURL,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiry(resp.ExpiresIn),
	}
	if s.DisplayName == "" {
		s.DisplayName = strings.Split(s.Email, "@")[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
	out := *s
	return &out
}

func (c *IdentityClient) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.Internal("Failed to encode request", err)
	}

	resp, err := utils.DoWithRetry(ctx, c.session, utils.DefaultRetryPolicy, func() (*http.Request, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("key", c.apiKey)
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		var he *utils.HTTPStatusError
		if errors.As(err, &he) && he.Code < 500 {
			var ie identityError
			if json.Unmarshal([]byte(he.Body), &ie) == nil && ie.Error.Message != "" {
				return apperrors.Unauthorized(authMessage(ie.Error.Message), err)
			}
			return apperrors.Unauthorized("Authentication failed", err)
		}
		return apperrors.FetchFailed("Identity service unavailable", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.FetchFailed("Unreadable identity response", fmt.Errorf("decode: %w", err))
	}
	return nil
}

func authMessage(code string) string {
	switch {
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return "Invalid email or password"
	case strings.HasPrefix(code, "USER_DISABLED"):
		return "This account has been disabled"
	case strings.HasPrefix(code, "TOKEN_EXPIRED"), strings.HasPrefix(code, "INVALID_REFRESH_TOKEN"):
		return "Session expired, please sign in again"
	}
	return "Authentication failed: " + code
}

func expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return time.Now().Add(time.Duration(secs) * time.Second)
}
