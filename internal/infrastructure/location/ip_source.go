package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bloommarket/pkg/logger"
	"bloommarket/pkg/utils"
)

// IPSource approximates the position from the caller's public IP using an
// ip-api.com compatible JSON endpoint.
type IPSource struct {
	url    string
	client *http.Client
	retry  utils.RetryPolicy
}

func NewIPSource(url string, client *http.Client) *IPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &IPSource{
		url:    url,
		client: client,
		retry:  utils.DefaultRetryPolicy,
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (s *IPSource) CurrentPosition(ctx context.Context, _ Options) (_ Fix, err error) {
	defer logger.Time(ctx, "location.ip")(&err)

	resp, err := utils.DoWithRetry(ctx, s.client, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		var he *utils.HTTPStatusError
		if errors.As(err, &he) && (he.Code == http.StatusForbidden || he.Code == http.StatusUnauthorized) {
			return Fix{}, &SourceError{Kind: PermissionDenied, Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Fix{}, &SourceError{Kind: Timeout, Err: err}
		}
		return Fix{}, &SourceError{Kind: PositionUnavailable, Err: err}
	}
	defer resp.Body.Close()

	var decoded ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Fix{}, &SourceError{Kind: PositionUnavailable, Err: fmt.Errorf("decode ip lookup: %w", err)}
	}

	if decoded.Status != "" && decoded.Status != "success" {
		return Fix{}, &SourceError{Kind: PositionUnavailable, Err: fmt.Errorf("ip lookup failed: %s", decoded.Message)}
	}

	return Fix{
		Latitude:  decoded.Lat,
		Longitude: decoded.Lon,
		Timestamp: time.Now(),
	}, nil
}
